package ingest

import (
	"context"
	"time"

	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/pkg/log"
)

const seedSource = "Climate Knowledge Base"

// seededAt is fixed so seeding is idempotent: the same six documents get
// the same ids on every run and storing them again is a no-op.
var seededAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// Seed loads the built-in climate knowledge articles. They guarantee the
// advisor has grounding material before any live feed has run.
func (in *Ingestor) Seed(ctx context.Context) (int, error) {
	n, err := in.IngestFacts(ctx, seedFacts())
	if err != nil {
		return n, err
	}
	log.FromCtx(ctx).Info().Int("documents", n).Msg("seeded knowledge base")
	return n, nil
}

func seedFacts() []core.Fact {
	return []core.Fact{
		{
			Provider:    seedSource,
			Subject:     "Renewable Energy Transition",
			SubjectKey:  "renewable-energy-transition",
			Title:       "Renewable Energy Transition",
			Content:     "Renewable energy sources like solar, wind, and hydroelectric power are crucial for reducing greenhouse gas emissions. Solar panels can reduce household carbon footprint by 3-4 tons of CO2 per year. Wind energy is one of the fastest-growing renewable sources globally. The transition to renewable energy requires investment but provides long-term cost savings and environmental benefits. Government incentives and falling technology costs make renewable energy increasingly accessible to individuals and businesses.",
			Category:    core.CategoryRenewableEnergy,
			Numbers:     map[string]float64{"household_co2_tons_saved": 3.5},
			RetrievedAt: seededAt,
		},
		{
			Provider:    seedSource,
			Subject:     "Sustainable Transportation",
			SubjectKey:  "sustainable-transportation",
			Title:       "Sustainable Transportation",
			Content:     "Transportation accounts for approximately 29% of greenhouse gas emissions in the United States. Electric vehicles can reduce emissions by 60-70% compared to gasoline vehicles. Public transportation, cycling, and walking are highly effective ways to reduce personal carbon footprint. Carpooling and ride-sharing can significantly reduce per-person emissions. For long-distance travel, trains are generally more environmentally friendly than planes or cars.",
			Category:    core.CategoryTransportation,
			Numbers:     map[string]float64{"us_emissions_share_pct": 29, "ev_reduction_pct": 65},
			RetrievedAt: seededAt,
		},
		{
			Provider:    seedSource,
			Subject:     "Energy Efficiency at Home",
			SubjectKey:  "home-energy-efficiency",
			Title:       "Energy Efficiency at Home",
			Content:     "Home energy efficiency improvements can reduce energy consumption by 20-30%. LED lighting uses 75% less energy than incandescent bulbs. Proper insulation can reduce heating and cooling costs by up to 40%. Smart thermostats can save 10-15% on heating and cooling bills. Energy-efficient appliances with ENERGY STAR ratings use 10-50% less energy than standard models. Sealing air leaks around windows and doors is a cost-effective way to improve efficiency.",
			Category:    core.CategoryEnergyEfficiency,
			Numbers:     map[string]float64{"consumption_reduction_pct": 25, "led_savings_pct": 75},
			RetrievedAt: seededAt,
		},
		{
			Provider:    seedSource,
			Subject:     "Sustainable Food Choices",
			SubjectKey:  "sustainable-food-choices",
			Title:       "Sustainable Food Choices",
			Content:     "Food production accounts for about 26% of global greenhouse gas emissions. Plant-based diets can reduce food-related emissions by up to 73%. Reducing meat consumption, especially beef, has significant environmental impact. Local and seasonal food choices reduce transportation emissions. Reducing food waste is crucial - about 1/3 of food produced globally is wasted. Composting food scraps reduces methane emissions from landfills and creates valuable soil amendment.",
			Category:    core.CategoryFood,
			Numbers:     map[string]float64{"global_emissions_share_pct": 26, "plant_diet_reduction_pct": 73},
			RetrievedAt: seededAt,
		},
		{
			Provider:    seedSource,
			Subject:     "Water Conservation",
			SubjectKey:  "water-conservation",
			Title:       "Water Conservation",
			Content:     "Water conservation reduces energy consumption for water treatment and distribution. Low-flow fixtures can reduce water usage by 20-60%. Fixing leaks promptly prevents waste - a single dripping faucet can waste over 3,000 gallons per year. Rainwater harvesting can reduce municipal water demand. Drought-resistant landscaping reduces irrigation needs. Shorter showers and full loads in dishwashers and washing machines maximize efficiency.",
			Category:    core.CategoryWater,
			Numbers:     map[string]float64{"low_flow_savings_pct": 40, "leak_gallons_per_year": 3000},
			RetrievedAt: seededAt,
		},
		{
			Provider:    seedSource,
			Subject:     "Waste Reduction and Recycling",
			SubjectKey:  "waste-reduction-recycling",
			Title:       "Waste Reduction and Recycling",
			Content:     "The waste sector contributes about 5% of global greenhouse gas emissions. Reducing, reusing, and recycling materials prevents emissions from manufacturing new products. Composting organic waste reduces methane emissions from landfills. Proper recycling of electronics prevents toxic materials from entering the environment. Choosing products with minimal packaging reduces waste. Buying durable, repairable products reduces long-term waste generation.",
			Category:    core.CategoryWaste,
			Numbers:     map[string]float64{"global_emissions_share_pct": 5},
			RetrievedAt: seededAt,
		},
	}
}

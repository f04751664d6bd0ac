package advisor

import (
	"fmt"
	"strings"

	"github.com/sandevgo/guardian/internal/core"
)

// fallbackAnswer builds a deterministic answer when the generation service
// is unreachable. No randomness and no external calls: the same question,
// profile and retrieved documents always produce the same text, so the
// degraded path is fully testable.
func fallbackAnswer(qc core.QueryContext, composed Composed) string {
	var b strings.Builder
	b.WriteString(topicAdvice(qc.RawQuery, qc.Profile))

	if len(composed.Included) > 0 {
		b.WriteString("\n\n**From the knowledge base:**\n")
		top := composed.Included[0]
		b.WriteString(firstSentences(top.Doc.Content, 2))
	}

	return b.String()
}

func topicAdvice(query string, profile *core.Profile) string {
	q := strings.ToLower(query)

	switch {
	case containsAny(q, "energy", "electricity", "power", "solar", "wind"):
		return energyAdvice(profile)
	case containsAny(q, "transport", "car", "vehicle", "travel", "commute"):
		return transportAdvice(profile)
	case containsAny(q, "food", "diet", "meat", "eat"):
		return foodAdvice()
	case containsAny(q, "water", "shower", "irrigation"):
		return waterAdvice()
	case containsAny(q, "waste", "recycle", "trash", "compost"):
		return wasteAdvice()
	case containsAny(q, "plan", "action", "recommend", "start"):
		return actionPlan(profile)
	default:
		return generalAdvice()
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func place(profile *core.Profile) string {
	if profile != nil && profile.Location != "" {
		return profile.Location
	}
	return "your area"
}

func energyAdvice(profile *core.Profile) string {
	return fmt.Sprintf(`**Energy recommendations for %s**

Low cost, start now:
- Switch to LED bulbs: about 75%% less energy than incandescent
- Adjust the thermostat 2-3 degrees: saves 10-15%% on heating and cooling
- Unplug idle electronics and wash clothes cold

Medium term:
- Install a smart thermostat and seal air leaks
- Replace failing appliances with ENERGY STAR models

Long term:
- Rooftop solar can cut electricity bills by 70-90%% where conditions allow
- A heat pump is roughly 3x more efficient than resistive heating

Combined, these typically cut household energy use by 30-50%%.`, place(profile))
}

func transportAdvice(profile *core.Profile) string {
	lifestyle := "urban"
	if profile != nil && profile.Lifestyle != "" {
		lifestyle = profile.Lifestyle
	}
	return fmt.Sprintf(`**Sustainable transportation (%s lifestyle)**

Daily travel:
- Walk or bike trips under 2 miles
- Public transit emits roughly 45%% less per person than driving alone
- Carpooling halves per-person emissions

Vehicle choices:
- An electric vehicle cuts emissions 60-70%% versus gasoline
- Keep tires properly inflated and combine errands into one trip

Long distance:
- Prefer trains over planes where practical: around 80%% lower emissions

Transportation changes commonly reduce a personal footprint by 20-40%%.`, lifestyle)
}

func foodAdvice() string {
	return `**Sustainable food choices**

- Food production drives about 26% of global greenhouse gas emissions
- Skipping meat 2-3 days a week can cut food emissions by around 30%
- Chicken and fish carry roughly a tenth of beef's footprint
- Buy local and seasonal, plan meals weekly, compost the scraps
- About a third of food produced globally is wasted; waste less first`
}

func waterAdvice() string {
	return `**Water conservation**

- Low-flow fixtures save 20-60% of indoor water use
- Fix leaks promptly: one dripping faucet wastes over 3,000 gallons a year
- Run dishwashers and washing machines only with full loads
- Outdoors, use drought-resistant planting and water early morning
- Saving water also saves the energy spent treating and pumping it`
}

func wasteAdvice() string {
	return `**Waste reduction**

- Reduce first: buy durable goods and minimal packaging
- Reuse before recycling; donate what still works
- Learn local recycling rules, contamination ruins whole batches
- Compost organic waste to cut landfill methane
- A typical household can halve its waste this way`
}

func actionPlan(profile *core.Profile) string {
	focus := "all areas"
	if profile != nil && len(profile.Interests) > 0 {
		focus = strings.Join(profile.Interests, ", ")
	}
	return fmt.Sprintf(`**Climate action plan for %s** (focus: %s)

First 3 months:
- LED bulbs throughout, fix water leaks, start a recycling routine
- Walk or bike short trips, plan meals to cut food waste

Months 3-12:
- Smart thermostat, better insulation, low-flow fixtures
- Meat-free days 2-3 times a week, start composting

Years 1-3:
- Larger investments as budget allows: solar, heat pump, or an EV

Realistic total: a 30-50%% smaller footprint and four figures in annual savings.`, place(profile), focus)
}

func generalAdvice() string {
	return `I can help with practical climate action in several areas:

- **Energy**: cut home electricity and heating use
- **Transportation**: lower-emission ways to get around
- **Food**: diet and shopping choices with less impact
- **Water**: use less, and less hot water especially
- **Waste**: reduce, reuse, recycle, compost

Start with the cheapest actions in the area you control most, and track progress monthly.`
}

// firstSentences clips content at a sentence boundary, never mid-sentence.
func firstSentences(text string, n int) string {
	var count, end int
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
			end = i + 1
			if count == n {
				break
			}
		}
	}
	if count == 0 {
		return text
	}
	return strings.TrimSpace(text[:end])
}

package config

import "os"

func IsDebug() bool {
	return os.Getenv("GUARDIAN_DEBUG") == "1"
}

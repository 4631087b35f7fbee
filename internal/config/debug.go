package config

import (
	"os"
	"strconv"
)

func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("TUSKCHAT_DEBUG"))
	return debug
}

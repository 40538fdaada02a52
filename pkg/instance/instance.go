package instance

import (
	"os"
	"strconv"

	"github.com/DevStdio379/settisfy-web/pkg/env"
)

const fallbackHost = "settisfy"

// GetID names this process in logs and as the cron lock owner. An explicit
// SETTISFY_INSTANCE_ID or platform DYNO wins; otherwise host and pid are
// combined so two workers on one machine never share an owner.
func GetID() string {
	if id := env.First("SETTISFY_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fallbackHost
	}
	return host + "-" + strconv.Itoa(os.Getpid())
}

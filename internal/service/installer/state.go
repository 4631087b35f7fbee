package installer

import "github.com/sandevgo/tuskchat/internal/config"

// InstallState collects the answers given in the wizard. The config structs
// are the ones the services parse at startup, so they marshal straight
// into .env lines.
type InstallState struct {
	RuntimePath    string
	Force          bool
	Responder      config.ResponderConfig
	Telegram       config.TelegramConfig
	EnableTelegram bool
}

func NewInstallState(runtimePath string, force bool) *InstallState {
	return &InstallState{
		RuntimePath: runtimePath,
		Force:       force,
	}
}

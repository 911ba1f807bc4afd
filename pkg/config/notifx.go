package config

// NotifxConfig configures operator alert delivery.
type NotifxConfig struct {
	Provider       string
	FromAddress    string
	AlertTo        []string
	AWSRegion      string
	SESConfigSetID string
}

// Enabled reports whether alerts have somewhere to go
func (n NotifxConfig) Enabled() bool {
	return len(n.AlertTo) > 0
}

func loadNotifxConfig(env string) NotifxConfig {
	defaultProvider := "ses"
	if env == EnvDevelopment {
		defaultProvider = "console"
	}
	return NotifxConfig{
		Provider:       getEnv("NOTIFX_PROVIDER", defaultProvider),
		FromAddress:    getEnv("NOTIFX_FROM_ADDRESS", "noreply@gatekeeper.local"),
		AlertTo:        getEnvStringSlice("NOTIFX_ALERT_TO", nil),
		AWSRegion:      getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
		SESConfigSetID: getEnv("NOTIFX_SES_CONFIG_SET", ""),
	}
}

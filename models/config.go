package models

import "time"

type EnvConfig struct {
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	RequestTimeout   time.Duration
	CookiesDirectory string

	LogLevel string
	LogFile  bool
}

type ExtractorConfig struct {
	HTTPProxy    string `yaml:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy"`
	NoProxy      string `yaml:"no_proxy"`
	EdgeProxyURL string `yaml:"edge_proxy_url"`
	Impersonate  bool   `yaml:"impersonate"`
	HTTP3        bool   `yaml:"http3"`
	Referer      string `yaml:"referer"`

	IsDisabled bool `yaml:"disabled"`
}

package config

import "path/filepath"

// Defaults returns a config populated with sensible defaults. Load layers the
// file's values on top of this.
func Defaults() *Config {
	dir := DefaultConfigDir()
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			DataDir:  dir,
		},
		Gateway: GatewayConfig{
			Addr:        "ws://127.0.0.1:8000/ws",
			DownloadDir: filepath.Join(dir, "images"),
			PullTimeout: 30,
		},
		Groups: nil,
		Expiry: map[string]string{},
		Providers: ProvidersConfig{
			ChatGPT: ChatGPTConfig{
				APIBase: "https://api.openai.com/v1",
				Model:   "gpt-3.5-turbo",
				Prompt:  "你是智能聊天机器人，名字叫小乖。",
			},
			Xinghuo: XinghuoConfig{
				APIURL: "wss://spark-api.xf-yun.com/v3.5/chat",
				Domain: "generalv3.5",
			},
			ChatGLM: ChatGLMConfig{
				APIBase: "https://open.bigmodel.cn/api/paas/v4",
				Model:   "glm-4",
			},
			Bard: BardConfig{
				ChatURL: "https://gemini.google.com/app",
			},
			Zhipu: ZhipuConfig{
				Model: "glm-4",
			},
		},
		OCR: OCRConfig{
			Region: "ap-guangzhou",
		},
		News: NewsConfig{
			Cron:    "30 8 * * *",
			APIBase: "http://www.soyoger.com/api_vtwo/news/top",
		},
		Contacts: ContactsConfig{
			DBPath: filepath.Join(dir, "contacts.db"),
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "/metrics",
			Port:     9090,
		},
	}
}

package openai

import "github.com/Corphon/MagicStudio/internal/llm"

// compatibleService is a chat completions endpoint that speaks the OpenAI wire format
type compatibleService struct {
	name    string
	baseURL string
	model   string
	models  []string
}

var compatibleServices = []compatibleService{
	{
		name:    "openrouter",
		baseURL: "https://openrouter.ai/api/v1",
		model:   "google/gemma-3-27b-it:free",
		models:  []string{"google/gemma-3-27b-it:free", "qwen/qwen3-235b-a22b:free", "mistralai/devstral-2512:free"},
	},
	{
		name:    "grok",
		baseURL: "https://api.x.ai/v1",
		model:   "grok-3",
		models:  []string{"grok-3", "grok-3-mini"},
	},
	{
		name:    "qwen",
		baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		model:   "qwen2.5-max",
		models:  []string{"qwen2.5-max", "qwen-plus", "qwen-turbo"},
	},
	{
		name:    "glm",
		baseURL: "https://open.bigmodel.cn/api/paas/v4",
		model:   "glm-4",
		models:  []string{"glm-4", "glm-4-flash"},
	},
	{
		name:    "githubmodels",
		baseURL: "https://models.inference.ai.azure.com",
		model:   "gpt-4o-mini",
		models:  []string{"gpt-4o-mini", "gpt-4o", "o3-mini"},
	},
}

func init() {
	for _, svc := range compatibleServices {
		llm.Register(svc.name, func() llm.Provider {
			return &Provider{name: svc.name, baseURL: svc.baseURL, model: svc.model, models: svc.models}
		})
	}
}

// CompatibleNames lists the preset OpenAI-compatible text services
func CompatibleNames() []string {
	names := make([]string, 0, len(compatibleServices))
	for _, svc := range compatibleServices {
		names = append(names, svc.name)
	}
	return names
}

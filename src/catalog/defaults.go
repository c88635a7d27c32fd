package catalog

// Built-in model ids.
const (
	ModelGPT4oMini    = "openai/gpt-4o-mini"
	ModelGPT41Mini    = "openai/gpt-4.1-mini"
	ModelGPT41Nano    = "openai/gpt-4.1-nano"
	ModelGPT4o        = "openai/gpt-4o"
	ModelGPT41        = "openai/gpt-4.1"
	ModelGPT45        = "openai/gpt-4.5"
	ModelDeepSeekR1   = "deepseek/deepseek-chat-r1"
	ModelDeepSeekV3   = "deepseek/deepseek-v3"
	ModelGeminiPro15  = "google/gemini-1.5-pro"
	ModelClaudeSonnet = "anthropic/claude-3.7-sonnet"
	ModelQwenLocal    = "qwen3-4b"
	ModelDallE3       = "openai/dall-e-3"
	ModelSDXL         = "stability/sdxl"
)

// PriceJPY is the monthly subscription price per plan, in yen.
var PriceJPY = map[Plan]int{
	PlanFree:  0,
	PlanLite:  980,
	PlanHeavy: 2980,
}

func defaultModels() []Model {
	return []Model{
		{
			ID: ModelGPT4oMini, Name: "GPT-4o Mini", Provider: "openai",
			Description:   "Small, fast GPT-4o model",
			Tier:          TierFree, Kind: KindChat,
			ContextWindow: 16000, FallbackID: ModelGPT41Mini,
		},
		{
			ID: ModelGPT41Mini, Name: "GPT-4.1 Mini", Provider: "openai",
			Description:   "Small, fast GPT-4.1 model",
			Tier:          TierFree, Kind: KindChat,
			ContextWindow: 16000, FallbackID: ModelGPT41Nano,
		},
		{
			ID: ModelGPT41Nano, Name: "GPT-4.1 Nano", Provider: "openai",
			Description:   "Ultra-compact, fast GPT-4.1 model",
			Tier:          TierFree, Kind: KindChat,
			ContextWindow: 8000, FallbackID: ModelDeepSeekR1,
		},
		{
			ID: ModelGPT4o, Name: "GPT-4o", Provider: "openai",
			Description:   "High-performance GPT-4o model",
			Tier:          TierLite, Kind: KindChat,
			ContextWindow: 128000, FallbackID: ModelGPT4oMini,
		},
		{
			ID: ModelGPT41, Name: "GPT-4.1", Provider: "openai",
			Description:   "High-performance GPT-4.1 model",
			Tier:          TierLite, Kind: KindChat,
			ContextWindow: 128000, FallbackID: ModelGPT4o,
		},
		{
			ID: ModelGPT45, Name: "GPT-4.5", Provider: "openai",
			Description:   "Latest high-performance GPT model",
			Tier:          TierHeavy, Kind: KindChat,
			ContextWindow: 128000, FallbackID: ModelGPT41,
		},
		{
			ID: ModelDeepSeekR1, Name: "DeepSeek R1", Provider: "deepseek",
			Description:   "High-performance reasoning model",
			Tier:          TierFree, Kind: KindChat,
			ContextWindow: 32000, FallbackID: ModelQwenLocal,
		},
		{
			ID: ModelDeepSeekV3, Name: "DeepSeek V3", Provider: "deepseek",
			Description:   "Latest high-performance DeepSeek model",
			Tier:          TierHeavy, Kind: KindChat,
			ContextWindow: 32000, FallbackID: ModelDeepSeekR1,
		},
		{
			ID: ModelGeminiPro15, Name: "Gemini 1.5 Pro", Provider: "google",
			Description:   "Google's high-performance model",
			Tier:          TierHeavy, Kind: KindChat,
			ContextWindow: 1000000, FallbackID: ModelGPT4o,
		},
		{
			ID: ModelClaudeSonnet, Name: "Claude 3.7 Sonnet", Provider: "anthropic",
			Description:   "Anthropic's high-performance model",
			Tier:          TierHeavy, Kind: KindChat,
			ContextWindow: 200000, FallbackID: ModelGPT4o,
		},
		{
			ID: ModelQwenLocal, Name: "Qwen3 4B", Provider: "local",
			Description:   "Lightweight on-device model",
			Tier:          TierFree, Kind: KindChat,
			ContextWindow: 8000, Local: true,
		},
		{
			ID: ModelDallE3, Name: "DALL-E 3", Provider: "openai",
			Description: "OpenAI's image generation model",
			Tier:        TierFree, Kind: KindImage,
		},
		{
			ID: ModelSDXL, Name: "Stable Diffusion XL", Provider: "stability",
			Description: "Stability's image generation model",
			Tier:        TierFree, Kind: KindImage,
		},
	}
}

func defaultLimits() Limits {
	return Limits{
		PlanFree: {
			ModelGPT4oMini:  20,
			ModelGPT41Mini:  20,
			ModelGPT41Nano:  30,
			ModelDeepSeekR1: 30,
			ModelDallE3:     5,
			ModelSDXL:       10,
			ModelQwenLocal:  Unlimited,
		},
		PlanLite: {
			ModelGPT4oMini:  50,
			ModelGPT41Mini:  50,
			ModelGPT41Nano:  100,
			ModelGPT4o:      30,
			ModelGPT41:      30,
			ModelDeepSeekR1: 100,
			ModelDallE3:     20,
			ModelSDXL:       40,
			ModelQwenLocal:  Unlimited,
		},
		PlanHeavy: {
			ModelGPT4oMini:    200,
			ModelGPT41Mini:    200,
			ModelGPT41Nano:    300,
			ModelGPT4o:        100,
			ModelGPT41:        100,
			ModelGPT45:        50,
			ModelDeepSeekR1:   300,
			ModelDeepSeekV3:   100,
			ModelGeminiPro15:  50,
			ModelClaudeSonnet: 50,
			ModelDallE3:       50,
			ModelSDXL:         100,
			ModelQwenLocal:    Unlimited,
		},
	}
}

// Default returns the built-in catalog shipped with the app.
func Default() *Catalog {
	c, err := New(defaultModels(), defaultLimits())
	if err != nil {
		// The built-in tables are compile-time constants; a failure here
		// is a programming error.
		panic(err)
	}
	return c
}

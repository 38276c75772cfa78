package narrative

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var encodings sync.Map // model -> *tiktoken.Tiktoken

// countTokens считает токены текста. Для неизвестных моделей используется cl100k_base,
// а если словарь недоступен, грубая оценка 4 символа на токен.
func countTokens(model, text string) int {
	if text == "" {
		return 0
	}
	if cached, ok := encodings.Load(model); ok {
		return len(cached.(*tiktoken.Tiktoken).Encode(text, nil, nil))
	}

	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	}
	if err != nil {
		return (len(text) + 3) / 4
	}
	encodings.Store(model, tke)
	return len(tke.Encode(text, nil, nil))
}

func estimateUsage(model, prompt, completion string) UsageInfo {
	p := countTokens(model, prompt)
	c := countTokens(model, completion)
	return UsageInfo{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c, Estimated: true}
}

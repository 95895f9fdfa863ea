package agent

import "strings"

// providerClass maps provider-error key phrases to a user-safe message.
// The core never retries automatically; Retryable only informs the caller.
type providerClass struct {
	phrases   []string
	retryable bool
	message   string
}

// Classification table. First phrase match wins; raw provider text is
// never forwarded to the caller.
var providerClasses = []providerClass{
	{
		phrases:   []string{"rate limit", "too many requests", "429"},
		retryable: true,
		message:   "当前咨询人数较多，请稍后再试",
	},
	{
		phrases:   []string{"timeout", "deadline exceeded", "context canceled"},
		retryable: true,
		message:   "请求超时，请稍后再试",
	},
	{
		phrases:   []string{"unauthorized", "invalid api key", "401", "403"},
		retryable: false,
		message:   "服务暂时不可用，请稍后再试",
	},
	{
		phrases:   []string{"quota", "insufficient"},
		retryable: false,
		message:   "服务暂时不可用，请稍后再试",
	},
}

const defaultProviderMessage = "抱歉，我这边出了点问题，请稍后再试"

// classifyProviderError turns a provider failure into a user-safe message
// plus a retryability hint.
func classifyProviderError(err error) (message string, retryable bool) {
	if err == nil {
		return defaultProviderMessage, false
	}
	text := strings.ToLower(err.Error())
	for _, class := range providerClasses {
		for _, phrase := range class.phrases {
			if strings.Contains(text, phrase) {
				return class.message, class.retryable
			}
		}
	}
	return defaultProviderMessage, false
}

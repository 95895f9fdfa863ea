package agent

import "strings"

// SafeResponse is the fixed refusal returned for blocked input.
const SafeResponse = "我是智能商城导购助手，只能帮您处理购物相关的问题。有什么购物需求我可以帮您吗？"

// blockedPatterns is the prompt-injection and policy-bypass denylist.
// Matching is case-insensitive substring.
var blockedPatterns = []string{
	"忽略上述", "忽略之前", "忘记你的", "你现在是", "假装你是",
	"扮演", "角色扮演", "输出你的prompt", "输出系统提示",
	"你的指令是什么", "dan模式", "越狱", "jailbreak",
	"ignore previous", "disregard", "pretend you are",
}

// InputBlocked reports whether user input hits the safety denylist.
// A blocked turn must never reach the LLM.
func InputBlocked(input string) bool {
	lower := strings.ToLower(input)
	for _, pattern := range blockedPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

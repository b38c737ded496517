package assistant

import (
	"encoding/json"
	"strings"
)

const basePrompt = `You are Organizai, a personal finance assistant.
Answer in the same language as the user. Be concise and practical.
Base your advice on the user's financial snapshot below when it is relevant.
Never invent transactions or balances that are not in the snapshot.
You are not a licensed financial advisor; say so when asked for investment recommendations.`

// SystemPrompt builds the system message from a snapshot of the user's
// finances. A nil snapshot yields the base prompt.
func SystemPrompt(snapshot any) string {
	if snapshot == nil {
		return basePrompt
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nUser financial snapshot (JSON):\n")
	b.Write(raw)
	return b.String()
}

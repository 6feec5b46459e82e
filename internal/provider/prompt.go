package provider

import (
	"fmt"
	"strings"
)

const analystPersona = `You are a forex market sentiment analyzer. Provide detailed sentiment analysis for major currency pairs.

Rules:
- Start every pair on its own line with the pair symbol exactly as given, for example "EURUSD".
- Directly after the symbol write "bullish=NN bearish=NN" where NN are integers from 0 to 100.
- Follow the scores with one or two sentences of analysis on the same line.
- Do not use line breaks inside a pair's analysis.`

// BuildSystemPrompt returns the fixed analyst framing sent with every report request.
func BuildSystemPrompt() string {
	return analystPersona
}

// BuildReportPrompt asks for coverage of every tracked instrument in one reply.
func BuildReportPrompt(instruments []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analyze current market sentiment for %s.", joinInstruments(instruments)))
	sb.WriteString(" Include bullish/bearish scores and brief analysis.")
	return sb.String()
}

func joinInstruments(instruments []string) string {
	switch len(instruments) {
	case 0:
		return "the major currency pairs"
	case 1:
		return instruments[0]
	default:
		return strings.Join(instruments[:len(instruments)-1], ", ") + ", and " + instruments[len(instruments)-1]
	}
}

package logger

import (
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
)

// Separate sink for reasoner payload dumps. Prompts can carry retrieved
// policy text, so this log is opt-in and kept apart from the service log.

var (
	llmMu       sync.Mutex
	llmLog      *log.Logger
	llmDumpBody bool
)

func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

// EnableLLMPayloadDump controls whether full prompts/responses are written.
// When disabled only the envelope line (purpose, model, size) is logged.
func EnableLLMPayloadDump(enabled bool) {
	llmMu.Lock()
	llmDumpBody = enabled
	llmMu.Unlock()
}

func LLMRequest(model, purpose, prompt string) {
	writeLLM("REQUEST", model, purpose, prompt)
}

func LLMResponse(model, purpose, response string) {
	writeLLM("RESPONSE", model, purpose, response)
}

func writeLLM(kind, model, purpose, body string) {
	llmMu.Lock()
	sink := llmLog
	dump := llmDumpBody
	llmMu.Unlock()
	if sink == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM][")
	b.WriteString(kind)
	b.WriteString("][")
	b.WriteString(model)
	b.WriteString("][")
	b.WriteString(purpose)
	b.WriteString("]")
	if dump {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(body))
	} else {
		b.WriteString(" bytes=")
		b.WriteString(strconv.Itoa(len(body)))
	}
	sink.Println(b.String())
}

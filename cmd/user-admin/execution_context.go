package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// annotationStructuredLog marks commands whose fatal errors are logged as JSON
// instead of printed.
const annotationStructuredLog = "structured-log"

type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	executionMu  sync.RWMutex
	executionCtx commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	executionMu.Lock()
	executionCtx = ctx
	executionMu.Unlock()
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func currentCommandExecutionContext() commandExecutionContext {
	executionMu.RLock()
	defer executionMu.RUnlock()
	return executionCtx
}

func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationStructuredLog] == "true" {
			return true
		}
	}
	return false
}

package services

import "time"

// SetClock replaces the clock a StatementService uses to date yearless statements.
func SetClock(s StatementService, now func() time.Time) {
	s.(*statementServiceImpl).now = now
}

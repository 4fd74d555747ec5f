package analyzer

// ProgressReporter provides callbacks for reporting analysis progress.
// Implementations can display progress bars, log messages, or remain silent.
// The service never calls a reporter from two goroutines at once.
type ProgressReporter interface {
	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnFileProcessed is called after each file is analyzed or fails.
	OnFileProcessed(path string, err error)

	// OnComplete is called when the run completes.
	OnComplete(summary *Summary)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryComplete(files int)          {}
func (NoOpProgressReporter) OnFileProcessed(path string, err error) {}
func (NoOpProgressReporter) OnComplete(summary *Summary)            {}

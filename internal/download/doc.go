// Package download provides the concurrent download orchestrator.
//
// # Manager
//
// The Manager accepts any number of download requests and runs a bounded
// number of them at once:
//
//  1. AddTask creates a Pending task and appends it to a FIFO queue
//  2. The dispatch loop starts queued tasks while fewer than
//     Config.MaxConcurrent are running
//  3. A Worker calls the Downloader, relays progress and validates the file
//  4. Completed artifacts are saved to the Store and post-processed
//  5. Failures and timeouts are retried, then reported as Failed
//
// # Basic Usage
//
//	m, err := download.NewManager(cfg, downloader,
//	    download.WithStore(catalog),
//	    download.WithPostProcessor(finisher))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	go m.Run(ctx)
//
//	adm, err := m.AddTask(ctx, "https://youtu.be/dQw4w9WgXcQ", opts)
//	if adm.Outcome == download.Skipped {
//	    fmt.Println("already in the catalog")
//	}
//
// # Task Lifecycle
//
//	Pending -> Running -> Completed
//	                   -> Cancelled
//	                   -> Failed/Timeout -> Retrying -> Pending (retry budget left)
//	                                     -> Failed (budget exhausted)
//
// Completed, Cancelled and final Failed tasks never change again.
// A cancelled task is never retried.
//
// # Admission
//
// Identifiers are normalized (see WithIdentifierNormalizer) and then:
//   - an unfinished task for the same identifier is returned as Duplicate
//   - an identifier the Store already holds is Skipped
//
// # Concurrency
//
// Config.MaxConcurrent (1 to 10, default 3) bounds running tasks. The
// dispatch loop is woken on every event that can free a slot or fill the
// queue, so there is no polling. Pause stops dispatching without touching
// running tasks or the queue.
//
// # Retry Logic
//
// A failed or timed out attempt is retried while Config.AutoRetry is set
// and the task's RetryCount is below Config.MaxRetries. The retry waits
// Config.RetryDelay and then joins the back of the queue.
//
// # Timeouts
//
// Every few seconds the running tasks are compared against
// Config.TaskTimeout, measured from the start of the current attempt.
// Expired workers are cancelled and their tasks go through the retry logic.
//
// # Events
//
// Subscribe returns a channel of Events:
//
//	events, unsubscribe := m.Subscribe(64)
//	defer unsubscribe()
//	for e := range events {
//	    switch e.Level() {
//	    case download.LevelError:
//	        fmt.Println("error:", e.Describe())
//	    default:
//	        fmt.Println(e.Describe())
//	    }
//	}
//
// Publishing never blocks. A subscriber that falls behind misses events
// and can always fall back to GetAllTasks and GetStatistics.
package download

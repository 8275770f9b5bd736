// Package model defines the core data structures shared by the tubetunes
// packages.
//
// # Task
//
// Task is one unit of download work and the record the manager keeps for it:
//
//	task := manager.GetTask(id)
//	fmt.Println(task.Status, task.Progress, task.RetryCount)
//
// TaskStatus encodes the lifecycle (Pending, Running, Retrying, Completed,
// Failed, Cancelled, Timeout) with helpers to classify it:
//
//	if task.Status.IsTerminal() {
//	    fmt.Println("done:", task.Status)
//	}
//
// # Options
//
// Options is a value type copied into each task at creation, so a running
// task never sees later configuration changes.
//
// # Artifact
//
// Artifact describes the audio file produced by a completed task, with the
// metadata used for tagging, the catalog and playlists.
//
// # Playlist Format
//
// PlaylistFormat selects the file type used when exporting playlists:
//
//	pf, _ := model.ParsePlaylistFormat("pls")
//	fmt.Println(pf.Extension()) // ".pls"
package model

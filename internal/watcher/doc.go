// Package watcher reports changes under a directory tree as debounced
// batches, so the watch command can rerun a search once per burst of edits.
//
// Events come from fsnotify. Paths matching the exclude patterns, the .git
// directory and explicitly skipped paths (such as the archive being written)
// never produce events.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	go func() { _ = w.Run(ctx, "/path/to/tree") }()
//
//	for batch := range w.Events() {
//	    // rerun the search
//	}
package watcher

package schedule

import "time"

// nowStamp renders the current time in the same layout spec.md §3 uses
// for commit dates, for the _metadata row's "date" column.
func nowStamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

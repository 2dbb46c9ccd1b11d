package ipc

// EnqueueRequest describes one song folder to add to the daemon queue.
type EnqueueRequest struct {
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	Folder    string `json:"folder"`
	Mode      string `json:"mode"`
	SourceURL string `json:"source_url"`
	SongID    int    `json:"song_id"`
}

// EnqueueResponse reports the accepted job.
type EnqueueResponse struct {
	Job JobSummary `json:"job"`
}

// JobSummary is the wire form of a queued job.
type JobSummary struct {
	ID         string `json:"id"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Folder     string `json:"folder"`
	Mode       string `json:"mode"`
	SourceURL  string `json:"source_url"`
	SongID     int    `json:"song_id"`
	Status     string `json:"status"`
	EnqueuedAt string `json:"enqueued_at"`
}

// QueueListRequest fetches the current queue snapshot.
type QueueListRequest struct{}

// QueueListResponse contains every job the daemon knows about.
type QueueListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse describes the daemon process and its queue load.
type StatusResponse struct {
	PID     int `json:"pid"`
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

package config

type WorkerKeyStruct struct {
	PersistDraftsQueue   string
	RefreshAnalysisQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistDraftsQueue:   "persist_drafts_queue",
	RefreshAnalysisQueue: "refresh_analysis_queue",
}

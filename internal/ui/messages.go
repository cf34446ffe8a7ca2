package ui

import (
	"vidconv/internal/model"
	"vidconv/internal/progress"
)

type jobUpdateMsg struct {
	Job model.Job
}

type jobResultMsg struct {
	R progress.Result
}

type batchDoneMsg struct {
	Report *model.BatchReport
	Err    error
}

package main

import (
	"io"
	"runtime"
	"strings"
	"text/template"
	"time"
)

type Report struct {
	// Configuration
	Sessions  int
	Ticks     int
	DeltaTime float64

	// Results
	Results        []Result
	TotalTime      time.Duration
	Verified       bool
	Deterministic  bool
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Earthshot Stress Test Report

## Test Configuration
- **Sessions:** {{.Sessions}}
- **Ticks per Session:** {{.Ticks}}
- **Time Step:** {{printf "%.4f" .DeltaTime}} s
- **Wall Time:** {{.TotalTime}}

## Sessions
| Seed | Ticks | Digest | Health | Score | Shots | Spawned | Failures | Unlocked | Avg | Max |
|------|-------|--------|--------|-------|-------|---------|----------|----------|-----|-----|
{{- range .Results}}
| {{.Seed}} | {{.Ticks}} | {{printf "%016x" .Digest}} | {{printf "%.0f" .Health}} | {{.Score}} | {{.Fired}} | {{.Spawned}} | {{.Failures}} | {{join .Unlocked " "}} | {{.UpdateTime.Avg}} | {{.UpdateTime.Max}} |
{{- end}}
{{if .Verified}}
## Determinism
- **Replay matches first session:** {{.Deterministic}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
{{end}}`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"join": strings.Join,
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}

// Package pfsimple is the public surface of the decay-candidate finder.
// It re-exports the supported types and entry points from the internal
// packages so embedding code depends on a single import path.
//
// The typical embedding streams events from JSONL, builds a decay
// hypothesis and runs one finder per event:
//
//	events, err := pfsimple.ReadFile("events.jsonl")
//	f, err := pfsimple.New(decay, pfsimple.DefaultCuts())
//	err = f.Init(&events[0])
//	cands, err := f.FindParticles()
//
// Run covers the whole pass in one call: configuration loading, input
// validation, a parallel worker pool and SQLite persistence.
package pfsimple

import (
	"github.com/viktorklochkov/PFSimple/internal/config"
	"github.com/viktorklochkov/PFSimple/internal/eventio"
	"github.com/viktorklochkov/PFSimple/internal/finder"
	"github.com/viktorklochkov/PFSimple/internal/particle"
	"github.com/viktorklochkov/PFSimple/internal/report"
	"github.com/viktorklochkov/PFSimple/internal/runner"
	sqlite "github.com/viktorklochkov/PFSimple/internal/storage/sqlite"
)

// ── Event model ──────────────────────────────────────────────────────

type Species = particle.Species
type Track = particle.Track
type Vertex = particle.Vertex
type Event = particle.Event
type TrackSet = particle.TrackSet

// Packed covariance sizes: 21 entries for the 6x6 track matrix, 6 for
// the 3x3 vertex matrix.
const (
	CovSize       = particle.CovSize
	VertexCovSize = particle.VertexCovSize
)

var NewTrackSet = particle.NewTrackSet
var CovIndex = particle.CovIndex
var SpeciesByPDG = particle.SpeciesByPDG
var SpeciesByName = particle.SpeciesByName
var SpeciesNames = particle.SpeciesNames
var MustSpecies = particle.MustSpecies

// Daughter species assignable to tracks.
var (
	PionPlus   = particle.PionPlus
	PionMinus  = particle.PionMinus
	KaonPlus   = particle.KaonPlus
	KaonMinus  = particle.KaonMinus
	Proton     = particle.Proton
	AntiProton = particle.AntiProton
	Deuteron   = particle.Deuteron
	He3        = particle.He3
)

// Mother species reconstructable from daughter combinations.
var (
	KShort      = particle.KShort
	Lambda      = particle.Lambda
	AntiLambda  = particle.AntiLambda
	XiMinus     = particle.XiMinus
	OmegaMinus  = particle.OmegaMinus
	Hypertriton = particle.Hypertriton
)

// ── Configuration ────────────────────────────────────────────────────

type Config = config.Config
type DecayConfig = config.DecayConfig
type CutsConfig = config.CutsConfig
type Decay = config.Decay
type Cuts = config.Cuts
type ValidationError = config.ValidationError

var Load = config.Load
var Default = config.Default
var DefaultCuts = config.DefaultCuts

// ── Finder ───────────────────────────────────────────────────────────

type SimpleFinder = finder.SimpleFinder
type Candidate = finder.Candidate
type Diagnostics = finder.Diagnostics
type Counters = finder.Counters
type Snapshot = finder.Snapshot
type Stage = finder.Stage
type BadEventError = finder.BadEventError

var New = finder.New
var NewCounters = finder.NewCounters
var ErrNoEvent = finder.ErrNoEvent

// ── Event I/O ────────────────────────────────────────────────────────

type EventReader = eventio.Reader
type EventWriter = eventio.Writer
type Generator = eventio.Generator
type GenConfig = eventio.GenConfig
type DecodeError = eventio.DecodeError

var NewEventReader = eventio.NewReader
var NewEventWriter = eventio.NewWriter
var NewGenerator = eventio.NewGenerator
var ReadFile = eventio.ReadFile
var ReadAll = eventio.ReadAll
var WriteFile = eventio.WriteFile
var ValidateEvent = eventio.ValidateEvent

// ── Runs ─────────────────────────────────────────────────────────────

type Options = runner.Options
type Summary = runner.Summary

var Run = runner.Run
var SetLogWriters = runner.SetLogWriters

// ── Storage ──────────────────────────────────────────────────────────

// RunRecord is the stored bookkeeping row for one reconstruction pass.
// The Run name itself belongs to the entry point above.
type RunRecord = sqlite.Run

type DB = sqlite.DB
type RunStore = sqlite.RunStore
type CandidateStore = sqlite.CandidateStore

var OpenDB = sqlite.Open
var OpenAndMigrateDB = sqlite.OpenAndMigrate
var NewRunStore = sqlite.NewRunStore
var NewCandidateStore = sqlite.NewCandidateStore

// ── Reporting ────────────────────────────────────────────────────────

// ReportSummary carries the per-run candidate statistics; Summary above
// is the runner's result.
type ReportSummary = report.Summary

type Hist = report.Hist

var BuildSummary = report.BuildSummary
var FitProb = report.FitProb
var NewHist = report.NewHist
var RenderHTML = report.RenderHTML
var SaveMassPNG = report.SaveMassPNG

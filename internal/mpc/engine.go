// engine.go - Asynchronous confidential-computation engine.
//
// Every transition is a submit/callback pair: the caller hands over sealed
// argument sections plus cleartext parameters and receives exactly one later
// invocation of its callback with either the verified result or an
// infrastructure error. An engine error is fatal to that request and is
// never retried here; logical rejection travels inside the result as a
// revealed flag.

package mpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/rs/zerolog"

	"encforest/internal/circuits"
	"encforest/internal/noise"
)

var ErrEngineClosed = errors.New("mpc: engine closed")

// Revealed-transcript opcodes, word 0 of every attestation.
const (
	opInitPlanet = iota + 1
	opInitSpawn
	opVerifySpawn
	opProcessMove
	opFlushPlanet
	opUpgradePlanet
)

// InitPlanetRequest materializes a body at sealed coordinates.
type InitPlanetRequest struct {
	Coords     *Section // 2 words: x, y (two's complement folded)
	GameID     uint64
	NowSlot    uint64
	Thresholds circuits.Thresholds
}

// InitPlanetResult is the sealed planet state plus the declassified outcome.
type InitPlanetResult struct {
	Static      *Section
	Dynamic     *Section
	Hash        noise.HashWords
	Valid       bool
	Attestation *Attestation
}

// InitSpawnRequest materializes and claims a spawn body in one transition.
type InitSpawnRequest struct {
	Coords     *Section // 2 words: x, y
	GameID     uint64
	NowSlot    uint64
	Owner      uint64 // folded identity of the spawning player
	Thresholds circuits.Thresholds
}

type InitSpawnResult struct {
	Static      *Section
	Dynamic     *Section
	Hash        noise.HashWords
	Valid       bool
	SpawnValid  bool
	Attestation *Attestation
}

// VerifySpawnRequest checks sealed coordinates against a claimed identifier.
type VerifySpawnRequest struct {
	Coords     *Section // 2 words: x, y
	GameID     uint64
	Claimed    noise.HashWords
	Thresholds circuits.Thresholds
}

type VerifySpawnResult struct {
	Valid       bool
	SpawnValid  bool
	Attestation *Attestation
}

// ProcessMoveRequest launches a shipment from a sealed source planet.
type ProcessMoveRequest struct {
	Static    *Section // StaticWords
	Dynamic   *Section // DynamicWords
	Move      *Section // 7 words: sx, sy, tx, ty, ships, metal, actor
	NowSlot   uint64
	GameSpeed uint64
}

type ProcessMoveResult struct {
	Dynamic     *Section // updated source dynamic tuple
	Payload     *Section // in-flight shipment, cluster-readable only
	LandingSlot uint64
	Surviving   uint64
	Valid       bool
	Attestation *Attestation
}

// FlushPlanetRequest applies one landed shipment to a sealed target planet.
type FlushPlanetRequest struct {
	Static    *Section
	Dynamic   *Section
	Payload   *Section // MoveWords
	NowSlot   uint64
	GameSpeed uint64
}

type FlushPlanetResult struct {
	Dynamic     *Section
	Applied     bool
	Attestation *Attestation
}

// UpgradePlanetRequest upgrades a sealed planet; the focus selector stays
// secret inside the request section.
type UpgradePlanetRequest struct {
	Static    *Section
	Dynamic   *Section
	Request   *Section // 2 words: actor, focus
	NowSlot   uint64
	GameSpeed uint64
}

type UpgradePlanetResult struct {
	Static      *Section
	Dynamic     *Section
	Success     bool
	NewLevel    uint64
	Attestation *Attestation
}

// Engine submits confidential transitions and delivers each result through
// exactly one callback invocation.
type Engine interface {
	ClusterPub() []byte
	SubmitInitPlanet(ctx context.Context, req InitPlanetRequest, cb func(*InitPlanetResult, error)) error
	SubmitInitSpawn(ctx context.Context, req InitSpawnRequest, cb func(*InitSpawnResult, error)) error
	SubmitVerifySpawn(ctx context.Context, req VerifySpawnRequest, cb func(*VerifySpawnResult, error)) error
	SubmitProcessMove(ctx context.Context, req ProcessMoveRequest, cb func(*ProcessMoveResult, error)) error
	SubmitFlushPlanet(ctx context.Context, req FlushPlanetRequest, cb func(*FlushPlanetResult, error)) error
	SubmitUpgradePlanet(ctx context.Context, req UpgradePlanetRequest, cb func(*UpgradePlanetResult, error)) error
	Close() error
}

// AttestationKeys bundles the Groth16 material for transcript attestation.
// A nil value disables proving; results then carry no attestation.
type AttestationKeys struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// LocalEngine evaluates the circuit set in-process, standing in for the
// remote computing cluster. It owns the cluster keypair, so it can unseal
// request sections and reseal outputs for its own future invocations.
type LocalEngine struct {
	key   *KeyPair
	keys  *AttestationKeys
	log   zerolog.Logger
	jobs  chan func()
	wg    sync.WaitGroup
	mu    sync.Mutex
	close bool
}

// NewLocalEngine starts the engine with the given number of worker
// goroutines. keys may be nil to skip attestation proving.
func NewLocalEngine(workers int, keys *AttestationKeys, log zerolog.Logger) (*LocalEngine, error) {
	if workers < 1 {
		workers = 1
	}
	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	e := &LocalEngine{
		key:  kp,
		keys: keys,
		log:  log.With().Str("component", "mpc-engine").Logger(),
		jobs: make(chan func(), workers*4),
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for job := range e.jobs {
				job()
			}
		}()
	}
	return e, nil
}

// ClusterPub is the compressed public key request sections must be sealed
// toward.
func (e *LocalEngine) ClusterPub() []byte {
	return e.key.PubBytes()
}

// Close drains in-flight jobs. Pending callbacks still fire exactly once.
func (e *LocalEngine) Close() error {
	e.mu.Lock()
	if e.close {
		e.mu.Unlock()
		return nil
	}
	e.close = true
	close(e.jobs)
	e.mu.Unlock()
	e.wg.Wait()
	return nil
}

// submit enqueues a job, honoring context cancellation and engine shutdown.
func (e *LocalEngine) submit(ctx context.Context, job func()) error {
	e.mu.Lock()
	if e.close {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.mu.Unlock()
	select {
	case e.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// once wraps a callback so infrastructure panics cannot fire it twice.
func once[T any](cb func(*T, error)) func(*T, error) {
	var o sync.Once
	return func(res *T, err error) {
		o.Do(func() { cb(res, err) })
	}
}

// attest proves and self-verifies the transcript before the callback runs,
// so a caller never sees an unverifiable result.
func (e *LocalEngine) attest(tr Transcript) (*Attestation, error) {
	if e.keys == nil {
		return nil, nil
	}
	att, err := ProveTranscript(e.keys.CCS, e.keys.PK, tr)
	if err != nil {
		return nil, err
	}
	if err := VerifyTranscript(e.keys.VK, att, tr.Revealed); err != nil {
		return nil, err
	}
	return att, nil
}

func (e *LocalEngine) sealOwn(words []uint64) (*Section, error) {
	return Seal(words, e.key.Pk)
}

func (e *LocalEngine) openCoords(sec *Section) (int64, int64, error) {
	words, err := Open(e.key.Sk, sec, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("unsealing coordinates: %w", err)
	}
	return int64(words[0]), int64(words[1]), nil
}

func (e *LocalEngine) openState(st, dyn *Section) (circuits.Static, circuits.Dynamic, error) {
	var s circuits.Static
	var d circuits.Dynamic
	sw, err := Open(e.key.Sk, st, circuits.StaticWords)
	if err != nil {
		return s, d, fmt.Errorf("unsealing static tuple: %w", err)
	}
	dw, err := Open(e.key.Sk, dyn, circuits.DynamicWords)
	if err != nil {
		return s, d, fmt.Errorf("unsealing dynamic tuple: %w", err)
	}
	copy(s[:], sw)
	copy(d[:], dw)
	return s, d, nil
}

// transcript packs circuit outputs into the fixed attestation layout.
func transcript(st circuits.Static, dyn circuits.Dynamic, mv circuits.MovePayload, revealed [TranscriptRevealed]uint64) Transcript {
	var tr Transcript
	copy(tr.Secret[:circuits.StaticWords], st[:])
	copy(tr.Secret[circuits.StaticWords:circuits.StaticWords+circuits.DynamicWords], dyn[:])
	copy(tr.Secret[circuits.StaticWords+circuits.DynamicWords:], mv[:])
	tr.Revealed = revealed
	return tr
}

func (e *LocalEngine) SubmitInitPlanet(ctx context.Context, req InitPlanetRequest, cb func(*InitPlanetResult, error)) error {
	cb = once(cb)
	return e.submit(ctx, func() {
		x, y, err := e.openCoords(req.Coords)
		if err != nil {
			cb(nil, err)
			return
		}
		st, dyn, rev := circuits.InitPlanet(x, y, req.GameID, req.NowSlot, req.Thresholds)

		att, err := e.attest(transcript(st, dyn, circuits.MovePayload{},
			[TranscriptRevealed]uint64{opInitPlanet, rev.Valid, 0, 0}))
		if err != nil {
			cb(nil, err)
			return
		}
		stSec, err := e.sealOwn(st[:])
		if err != nil {
			cb(nil, err)
			return
		}
		dynSec, err := e.sealOwn(dyn[:])
		if err != nil {
			cb(nil, err)
			return
		}
		e.log.Debug().Str("hash", rev.Hash.Hex()).Uint64("valid", rev.Valid).Msg("init-planet complete")
		cb(&InitPlanetResult{
			Static:      stSec,
			Dynamic:     dynSec,
			Hash:        rev.Hash,
			Valid:       rev.Valid == 1,
			Attestation: att,
		}, nil)
	})
}

func (e *LocalEngine) SubmitInitSpawn(ctx context.Context, req InitSpawnRequest, cb func(*InitSpawnResult, error)) error {
	cb = once(cb)
	return e.submit(ctx, func() {
		x, y, err := e.openCoords(req.Coords)
		if err != nil {
			cb(nil, err)
			return
		}
		st, dyn, rev := circuits.InitSpawnPlanet(x, y, req.GameID, req.NowSlot, req.Owner, req.Thresholds)

		att, err := e.attest(transcript(st, dyn, circuits.MovePayload{},
			[TranscriptRevealed]uint64{opInitSpawn, rev.Valid, rev.SpawnValid, 0}))
		if err != nil {
			cb(nil, err)
			return
		}
		stSec, err := e.sealOwn(st[:])
		if err != nil {
			cb(nil, err)
			return
		}
		dynSec, err := e.sealOwn(dyn[:])
		if err != nil {
			cb(nil, err)
			return
		}
		e.log.Debug().Str("hash", rev.Hash.Hex()).Uint64("spawn_valid", rev.SpawnValid).Msg("init-spawn complete")
		cb(&InitSpawnResult{
			Static:      stSec,
			Dynamic:     dynSec,
			Hash:        rev.Hash,
			Valid:       rev.Valid == 1,
			SpawnValid:  rev.SpawnValid == 1,
			Attestation: att,
		}, nil)
	})
}

func (e *LocalEngine) SubmitVerifySpawn(ctx context.Context, req VerifySpawnRequest, cb func(*VerifySpawnResult, error)) error {
	cb = once(cb)
	return e.submit(ctx, func() {
		x, y, err := e.openCoords(req.Coords)
		if err != nil {
			cb(nil, err)
			return
		}
		rev := circuits.VerifySpawn(x, y, req.GameID, req.Claimed, req.Thresholds)

		att, err := e.attest(transcript(circuits.Static{}, circuits.Dynamic{}, circuits.MovePayload{},
			[TranscriptRevealed]uint64{opVerifySpawn, rev.Valid, rev.SpawnValid, 0}))
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&VerifySpawnResult{
			Valid:       rev.Valid == 1,
			SpawnValid:  rev.SpawnValid == 1,
			Attestation: att,
		}, nil)
	})
}

func (e *LocalEngine) SubmitProcessMove(ctx context.Context, req ProcessMoveRequest, cb func(*ProcessMoveResult, error)) error {
	cb = once(cb)
	return e.submit(ctx, func() {
		st, dyn, err := e.openState(req.Static, req.Dynamic)
		if err != nil {
			cb(nil, err)
			return
		}
		mw, err := Open(e.key.Sk, req.Move, 7)
		if err != nil {
			cb(nil, fmt.Errorf("unsealing move request: %w", err))
			return
		}
		mreq := circuits.MoveRequest{
			SourceX: int64(mw[0]), SourceY: int64(mw[1]),
			TargetX: int64(mw[2]), TargetY: int64(mw[3]),
			Ships: mw[4], Metal: mw[5], Actor: mw[6],
		}
		outDyn, payload, rev := circuits.ProcessMove(st, dyn, mreq, req.NowSlot, req.GameSpeed)

		att, err := e.attest(transcript(circuits.Static{}, outDyn, payload,
			[TranscriptRevealed]uint64{opProcessMove, rev.Valid, rev.LandingSlot, rev.Surviving}))
		if err != nil {
			cb(nil, err)
			return
		}
		dynSec, err := e.sealOwn(outDyn[:])
		if err != nil {
			cb(nil, err)
			return
		}
		paySec, err := e.sealOwn(payload[:])
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&ProcessMoveResult{
			Dynamic:     dynSec,
			Payload:     paySec,
			LandingSlot: rev.LandingSlot,
			Surviving:   rev.Surviving,
			Valid:       rev.Valid == 1,
			Attestation: att,
		}, nil)
	})
}

func (e *LocalEngine) SubmitFlushPlanet(ctx context.Context, req FlushPlanetRequest, cb func(*FlushPlanetResult, error)) error {
	cb = once(cb)
	return e.submit(ctx, func() {
		st, dyn, err := e.openState(req.Static, req.Dynamic)
		if err != nil {
			cb(nil, err)
			return
		}
		pw, err := Open(e.key.Sk, req.Payload, circuits.MoveWords)
		if err != nil {
			cb(nil, fmt.Errorf("unsealing move payload: %w", err))
			return
		}
		var mv circuits.MovePayload
		copy(mv[:], pw)
		outDyn, rev := circuits.FlushPlanet(st, dyn, mv, req.NowSlot, req.GameSpeed)

		att, err := e.attest(transcript(circuits.Static{}, outDyn, circuits.MovePayload{},
			[TranscriptRevealed]uint64{opFlushPlanet, rev.Applied, 0, 0}))
		if err != nil {
			cb(nil, err)
			return
		}
		dynSec, err := e.sealOwn(outDyn[:])
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&FlushPlanetResult{
			Dynamic:     dynSec,
			Applied:     rev.Applied == 1,
			Attestation: att,
		}, nil)
	})
}

func (e *LocalEngine) SubmitUpgradePlanet(ctx context.Context, req UpgradePlanetRequest, cb func(*UpgradePlanetResult, error)) error {
	cb = once(cb)
	return e.submit(ctx, func() {
		st, dyn, err := e.openState(req.Static, req.Dynamic)
		if err != nil {
			cb(nil, err)
			return
		}
		rw, err := Open(e.key.Sk, req.Request, 2)
		if err != nil {
			cb(nil, fmt.Errorf("unsealing upgrade request: %w", err))
			return
		}
		ureq := circuits.UpgradeRequest{Actor: rw[0], Focus: rw[1]}
		outSt, outDyn, rev := circuits.UpgradePlanet(st, dyn, ureq, req.NowSlot, req.GameSpeed)

		att, err := e.attest(transcript(outSt, outDyn, circuits.MovePayload{},
			[TranscriptRevealed]uint64{opUpgradePlanet, rev.Success, rev.NewLevel, 0}))
		if err != nil {
			cb(nil, err)
			return
		}
		stSec, err := e.sealOwn(outSt[:])
		if err != nil {
			cb(nil, err)
			return
		}
		dynSec, err := e.sealOwn(outDyn[:])
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&UpgradePlanetResult{
			Static:      stSec,
			Dynamic:     dynSec,
			Success:     rev.Success == 1,
			NewLevel:    rev.NewLevel,
			Attestation: att,
		}, nil)
	})
}

// SealCoords seals a coordinate pair toward the cluster.
func SealCoords(x, y int64, clusterPub []byte) (*Section, error) {
	pub, err := ParsePub(clusterPub)
	if err != nil {
		return nil, err
	}
	return Seal([]uint64{uint64(x), uint64(y)}, pub)
}

// SealMoveRequest seals a full departure request toward the cluster.
func SealMoveRequest(sx, sy, tx, ty int64, ships, metal, actor uint64, clusterPub []byte) (*Section, error) {
	pub, err := ParsePub(clusterPub)
	if err != nil {
		return nil, err
	}
	return Seal([]uint64{uint64(sx), uint64(sy), uint64(tx), uint64(ty), ships, metal, actor}, pub)
}

// SealUpgradeRequest seals an upgrade request toward the cluster.
func SealUpgradeRequest(actor, focus uint64, clusterPub []byte) (*Section, error) {
	pub, err := ParsePub(clusterPub)
	if err != nil {
		return nil, err
	}
	return Seal([]uint64{actor, focus}, pub)
}

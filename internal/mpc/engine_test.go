// engine_test.go - Tests for the asynchronous local engine.

package mpc

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encforest/internal/circuits"
	"encforest/internal/noise"
)

func newTestEngine(t *testing.T) *LocalEngine {
	t.Helper()
	e, err := NewLocalEngine(2, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func await[T any](t *testing.T) (func(*T, error), func() (*T, error)) {
	t.Helper()
	type outcome struct {
		res *T
		err error
	}
	ch := make(chan outcome, 1)
	cb := func(res *T, err error) { ch <- outcome{res, err} }
	wait := func() (*T, error) {
		select {
		case o := <-ch:
			return o.res, o.err
		case <-time.After(10 * time.Second):
			t.Fatal("callback never fired")
			return nil, nil
		}
	}
	return cb, wait
}

func TestEngineInitPlanetLifecycle(t *testing.T) {
	e := newTestEngine(t)
	th := circuits.ThresholdsFrom(noise.DefaultThresholds())

	coords, err := SealCoords(5, 9, e.ClusterPub())
	require.NoError(t, err)

	cb, wait := await[InitPlanetResult](t)
	require.NoError(t, e.SubmitInitPlanet(context.Background(), InitPlanetRequest{
		Coords: coords, GameID: 3, NowSlot: 100, Thresholds: th,
	}, cb))

	res, err := wait()
	require.NoError(t, err)
	assert.Equal(t, noise.Mix(5, 9, 3), res.Hash)
	require.NotNil(t, res.Static)
	require.NotNil(t, res.Dynamic)
	assert.Len(t, res.Static.Cipher, circuits.StaticWords)
	assert.Len(t, res.Dynamic.Cipher, circuits.DynamicWords)
}

func TestEngineRoundTripsOwnSections(t *testing.T) {
	e := newTestEngine(t)
	th := circuits.ThresholdsFrom(noise.DefaultThresholds())
	ctx := context.Background()

	// Materialize, then feed the sealed sections straight back into a
	// flush with an empty payload: the engine must be able to unseal its
	// own output.
	coords, err := SealCoords(5, 9, e.ClusterPub())
	require.NoError(t, err)
	initCb, initWait := await[InitPlanetResult](t)
	require.NoError(t, e.SubmitInitPlanet(ctx, InitPlanetRequest{
		Coords: coords, GameID: 3, NowSlot: 100, Thresholds: th,
	}, initCb))
	initRes, err := initWait()
	require.NoError(t, err)

	clusterPub, err := ParsePub(e.ClusterPub())
	require.NoError(t, err)
	var zero circuits.MovePayload
	payload, err := Seal(zero[:], clusterPub)
	require.NoError(t, err)

	flushCb, flushWait := await[FlushPlanetResult](t)
	require.NoError(t, e.SubmitFlushPlanet(ctx, FlushPlanetRequest{
		Static: initRes.Static, Dynamic: initRes.Dynamic, Payload: payload,
		NowSlot: 120, GameSpeed: 1,
	}, flushCb))
	flushRes, err := flushWait()
	require.NoError(t, err)
	assert.False(t, flushRes.Applied)
	assert.Len(t, flushRes.Dynamic.Cipher, circuits.DynamicWords)
}

func TestEngineSpawnFlow(t *testing.T) {
	e := newTestEngine(t)
	th := circuits.ThresholdsFrom(noise.DefaultThresholds())
	ctx := context.Background()

	// Scan for a spawnable coordinate using the cleartext mirror, then
	// run the confidential claim against it.
	nth := noise.DefaultThresholds()
	var sx, sy int64
	found := false
	for x := int64(-2000); x <= 2000 && !found; x++ {
		props, ok := nth.Classify(noise.Mix(x, 1, 3))
		if ok && props.Body == noise.Planet && props.Size == 1 {
			sx, sy = x, 1
			found = true
		}
	}
	require.True(t, found, "no spawnable coordinate in scan range")

	coords, err := SealCoords(sx, sy, e.ClusterPub())
	require.NoError(t, err)
	cb, wait := await[InitSpawnResult](t)
	require.NoError(t, e.SubmitInitSpawn(ctx, InitSpawnRequest{
		Coords: coords, GameID: 3, NowSlot: 10, Owner: 777, Thresholds: th,
	}, cb))
	res, err := wait()
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.SpawnValid)

	// A verify-spawn against the announced hash agrees.
	coords2, err := SealCoords(sx, sy, e.ClusterPub())
	require.NoError(t, err)
	vcb, vwait := await[VerifySpawnResult](t)
	require.NoError(t, e.SubmitVerifySpawn(ctx, VerifySpawnRequest{
		Coords: coords2, GameID: 3, Claimed: res.Hash, Thresholds: th,
	}, vcb))
	vres, err := vwait()
	require.NoError(t, err)
	assert.True(t, vres.SpawnValid)
}

func TestEngineClosedRejectsSubmission(t *testing.T) {
	e, err := NewLocalEngine(1, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, e.Close())

	coords := &Section{}
	err = e.SubmitInitPlanet(context.Background(), InitPlanetRequest{Coords: coords}, func(*InitPlanetResult, error) {})
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestEngineMalformedSectionIsInfrastructureError(t *testing.T) {
	e := newTestEngine(t)

	cb, wait := await[InitPlanetResult](t)
	require.NoError(t, e.SubmitInitPlanet(context.Background(), InitPlanetRequest{
		Coords: &Section{Cipher: [][]byte{{1}}},
	}, cb))
	res, err := wait()
	assert.Nil(t, res)
	assert.Error(t, err)
}

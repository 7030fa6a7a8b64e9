package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimNotifiesSubscribers(t *testing.T) {
	t.Parallel()

	s := NewSim("ION_Pump_PS.I_I", 1.0)
	var seen []any
	token := s.Subscribe(func(v any) { seen = append(seen, v) })

	require.NoError(t, s.Set(context.Background(), 2.5))
	s.Push(3.0)
	s.Unsubscribe(token)
	s.Push(4.0)

	require.Equal(t, []any{2.5, 3.0}, seen)
	require.Equal(t, []any{2.5}, s.Writes())
	require.Zero(t, s.Subscribers())

	v, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, 4.0, v)
}

func TestSimSkipsCallbacksUnsubscribedDuringPublish(t *testing.T) {
	t.Parallel()

	s := NewSim("ION_Pump_PS.I_I", 1.0)
	calls := 0
	var first, second Token
	first = s.Subscribe(func(any) {
		calls++
		s.Unsubscribe(second)
	})
	second = s.Subscribe(func(any) {
		calls++
		s.Unsubscribe(first)
	})

	s.Push(2.0)

	require.Equal(t, 1, calls)
	require.Equal(t, 1, s.Subscribers())
}

func TestSimWriteFailure(t *testing.T) {
	t.Parallel()

	s := NewSim("galil_val", 0)
	s.FailWrites(errors.New("device offline"))
	require.EqualError(t, s.Set(context.Background(), 10), "device offline")

	s.FailWrites(nil)
	require.NoError(t, s.Set(context.Background(), 10))
}

func TestFloatConversions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{in: 1.5, want: 1.5},
		{in: 7, want: 7},
		{in: int64(-3), want: -3},
		{in: true, want: 1},
		{in: " 2.25 ", want: 2.25},
		{in: "abc", wantErr: true},
		{in: nil, wantErr: true},
		{in: struct{}{}, wantErr: true},
	}

	for _, tc := range cases {
		got, err := Float(tc.in)
		if tc.wantErr {
			require.Error(t, err, "%v", tc.in)
			continue
		}
		require.NoError(t, err)
		require.InDelta(t, tc.want, got, 1e-9)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.500000", Format(1.5))
	require.Equal(t, "42", Format(42))
	require.Equal(t, "on", Format("on"))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Add("galil_rbv", NewSim("galil_rbv", 0.0)))
	require.Error(t, r.Add("galil_rbv", NewSim("galil_rbv", 0.0)))
	require.Error(t, r.Add("nil", nil))

	s, ok := r.Lookup("galil_rbv")
	require.True(t, ok)
	require.Equal(t, "galil_rbv", s.Name())
	require.Equal(t, []string{"galil_rbv"}, r.Paths())
}

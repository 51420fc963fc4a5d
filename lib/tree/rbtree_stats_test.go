package tree

import (
	"context"
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader, name, attr string) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	res := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(attr))
				res[v.AsString()] += dp.Value
			}
		}
	}
	return res
}

func TestRbtreeStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	defer func() {
		otel.SetMeterProvider(prev)
		_ = provider.Shutdown(context.Background())
	}()

	tree := newTestTree[int, int](WithRBTreeStats[int, int]("test"))
	keys := lo.Shuffle(lo.Range(2000))
	for _, k := range keys {
		require.NoError(t, tree.Insert(k, k))
	}
	require.Error(t, tree.Insert(keys[0], 0))
	for _, k := range keys[:1500] {
		_, err := tree.Remove(k)
		require.NoError(t, err)
	}
	_, err := tree.Remove(-1)
	require.Error(t, err)
	for i := 0; i < 500; i++ {
		k := rand.Intn(4000)
		if tree.Exists(k) {
			_, err = tree.Remove(k)
		} else {
			err = tree.Insert(k, k)
		}
		require.NoError(t, err)
	}
	require.NoError(t, tree.Validate())

	entries := collectSums(t, reader, "rbtree.entries", "")
	require.Equal(t, tree.Len(), entries[""])

	ops := collectSums(t, reader, "rbtree.ops", "op")
	require.Greater(t, ops["insert"], int64(2000))
	require.Greater(t, ops["remove"], int64(1500))
	require.Equal(t, tree.Len(), ops["insert"]-ops["remove"])

	faults := collectSums(t, reader, "rbtree.faults", "fault")
	require.Equal(t, int64(1), faults["duplicate_key"])
	require.Equal(t, int64(1), faults["key_not_found"])

	rotations := collectSums(t, reader, "rbtree.rotations", "dir")
	require.Greater(t, rotations["left"], int64(0))
	require.Greater(t, rotations["right"], int64(0))

	// Draining pushes the delete fixup up to the root.
	for tree.Len() > 0 {
		_, err = tree.RemoveMin()
		require.NoError(t, err)
	}
	require.Nil(t, tree.Root())
	entries = collectSums(t, reader, "rbtree.entries", "")
	require.Equal(t, int64(0), entries[""])

	cases := collectSums(t, reader, "rbtree.rebalance.cases", "case")
	for _, c := range []rebalanceCase{
		caseInsertRoot, caseInsertRecolor,
		caseInsertLL, caseInsertLR, caseInsertRR, caseInsertRL,
		caseRemoveRoot, caseRemoveRedSibling, caseRemoveRecolorUp,
		caseRemoveRedParent, caseRemoveNearNephew, caseRemoveFarNephew,
	} {
		require.Greater(t, cases[string(c)], int64(0), "case %s", c)
	}

	for _, k := range lo.Range(10) {
		require.NoError(t, tree.Insert(k, k))
	}
	entries = collectSums(t, reader, "rbtree.entries", "")
	require.Equal(t, int64(10), entries[""])
	tree.Clear()
	entries = collectSums(t, reader, "rbtree.entries", "")
	require.Equal(t, int64(0), entries[""])
}

func TestRbtreeStats_Nil(t *testing.T) {
	var stats *rbTreeStats
	require.NotPanics(t, func() {
		stats.RecordInsert()
		stats.RecordRemove()
		stats.RecordClear(10)
		stats.RecordFault(ErrEmptyTree)
		stats.RecordRotation(Left)
		stats.RecordCase(caseRemoveRoot)
	})
}

func TestFaultName(t *testing.T) {
	testcases := []struct {
		err      error
		expected string
	}{
		{ErrDuplicateKey, "duplicate_key"},
		{ErrKeyNotFound, "key_not_found"},
		{ErrEmptyTree, "empty_tree"},
		{ErrInvalidArgument, "invalid_argument"},
		{ErrRedViolation, "unknown"},
	}
	tree := newTestTree[int, int]()
	for _, tc := range testcases {
		require.Equal(t, tc.expected, faultName(tc.err))
		require.Equal(t, tc.expected, faultName(tree.fault(tc.err, "op", 1)))
	}
}

package tree

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xboot/rbtree"
)

type rebalanceCase string

const (
	caseInsertRoot       rebalanceCase = "i-root"
	caseInsertRecolor    rebalanceCase = "i-recolor"
	caseInsertLL         rebalanceCase = "i-ll"
	caseInsertLR         rebalanceCase = "i-lr"
	caseInsertRR         rebalanceCase = "i-rr"
	caseInsertRL         rebalanceCase = "i-rl"
	caseRemoveRoot       rebalanceCase = "d1"
	caseRemoveRedSibling rebalanceCase = "d2"
	caseRemoveRecolorUp  rebalanceCase = "d3"
	caseRemoveRedParent  rebalanceCase = "d4"
	caseRemoveNearNephew rebalanceCase = "d5"
	caseRemoveFarNephew  rebalanceCase = "d6"
)

var (
	opInsertAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("op", "insert")))
	opRemoveAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("op", "remove")))
)

func faultName(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrEmptyTree):
		return "empty_tree"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
	}
	return "unknown"
}

// rbTreeStats is nil-safe, a tree without stats holds a nil pointer.
type rbTreeStats struct {
	entries   metric.Int64UpDownCounter
	ops       metric.Int64Counter
	faults    metric.Int64Counter
	rotations metric.Int64Counter
	cases     metric.Int64Counter
}

func (stats *rbTreeStats) RecordInsert() {
	if stats == nil {
		return
	}
	stats.entries.Add(context.Background(), 1)
	stats.ops.Add(context.Background(), 1, opInsertAttrs)
}

func (stats *rbTreeStats) RecordRemove() {
	if stats == nil {
		return
	}
	stats.entries.Add(context.Background(), -1)
	stats.ops.Add(context.Background(), 1, opRemoveAttrs)
}

func (stats *rbTreeStats) RecordClear(count int64) {
	if stats == nil || count == 0 {
		return
	}
	stats.entries.Add(context.Background(), -count)
}

func (stats *rbTreeStats) RecordFault(err error) {
	if stats == nil {
		return
	}
	stats.faults.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("fault", faultName(err))),
	)
}

func (stats *rbTreeStats) RecordRotation(dir RBDirection) {
	if stats == nil {
		return
	}
	stats.rotations.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("dir", strings.ToLower(dir.String()))),
	)
}

func (stats *rbTreeStats) RecordCase(c rebalanceCase) {
	if stats == nil {
		return
	}
	stats.cases.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("case", string(c))),
	)
}

func newRBTreeStats(name string) *rbTreeStats {
	builder := &strings.Builder{}
	builder.WriteString(RBTreeStatsName)
	builder.WriteString("/")
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	meter := otel.Meter(builder.String())
	return &rbTreeStats{
		entries: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.entries",
			metric.WithDescription("The number of live rbtree entries."),
		)),
		ops: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.ops",
			metric.WithDescription("The number of completed rbtree mutations."),
		)),
		faults: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.faults",
			metric.WithDescription("The number of rejected rbtree operations."),
		)),
		rotations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotations",
			metric.WithDescription("The number of rbtree rotations."),
		)),
		cases: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rebalance.cases",
			metric.WithDescription("The number of rbtree rebalance cases hit."),
		)),
	}
}

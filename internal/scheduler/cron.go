package scheduler

import (
	"time"

	"github.com/shaiso/syncron/internal/spec"
)

// NextFirings возвращает до count ближайших срабатываний расписания
// после from. Одноразовые расписания дают не больше одного.
func NextFirings(sp spec.Spec, from time.Time, count int) []time.Time {
	if count <= 0 {
		count = 1
	}

	sched := sp.Schedule()
	out := make([]time.Time, 0, count)

	t := from
	for len(out) < count {
		next := sched.Next(t)
		if next.IsZero() {
			break
		}
		out = append(out, next)
		t = next
	}
	return out
}

package ecs

// Each2 visits, in entity order, entities that have both A and B. It walks
// the smaller store and probes the other. fn must not add or remove A or B.
func Each2[A, B any](w *World, fn func(EntityID, *A, *B)) {
	sa, sb := Components[A](w), Components[B](w)
	if sa == nil || sb == nil {
		return
	}
	if sa.Size() <= sb.Size() {
		sa.Each(func(id EntityID, a *A) {
			if b := sb.Get(id); b != nil {
				fn(id, a, b)
			}
		})
		return
	}
	sb.Each(func(id EntityID, b *B) {
		if a := sa.Get(id); a != nil {
			fn(id, a, b)
		}
	})
}

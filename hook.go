package loadring

// traceBoundedLoad contains hooks called on BoundedLoadRing events.
type traceBoundedLoad struct {
	OnRefresh  func(skipped bool)
	OnRedirect func(from, to string)
	OnOverflow func(host string)
}

// Compose returns a new trace which calls hooks of t and then hooks of x.
func (t traceBoundedLoad) Compose(x traceBoundedLoad) (ret traceBoundedLoad) {
	switch {
	case t.OnRefresh == nil:
		ret.OnRefresh = x.OnRefresh
	case x.OnRefresh == nil:
		ret.OnRefresh = t.OnRefresh
	default:
		h1, h2 := t.OnRefresh, x.OnRefresh
		ret.OnRefresh = func(skipped bool) {
			h1(skipped)
			h2(skipped)
		}
	}
	switch {
	case t.OnRedirect == nil:
		ret.OnRedirect = x.OnRedirect
	case x.OnRedirect == nil:
		ret.OnRedirect = t.OnRedirect
	default:
		h1, h2 := t.OnRedirect, x.OnRedirect
		ret.OnRedirect = func(from, to string) {
			h1(from, to)
			h2(from, to)
		}
	}
	switch {
	case t.OnOverflow == nil:
		ret.OnOverflow = x.OnOverflow
	case x.OnOverflow == nil:
		ret.OnOverflow = t.OnOverflow
	default:
		h1, h2 := t.OnOverflow, x.OnOverflow
		ret.OnOverflow = func(host string) {
			h1(host)
			h2(host)
		}
	}
	return ret
}

func (t traceBoundedLoad) onRefresh(skipped bool) {
	if fn := t.OnRefresh; fn != nil {
		fn(skipped)
	}
}

func (t traceBoundedLoad) onRedirect(from, to string) {
	if fn := t.OnRedirect; fn != nil {
		fn(from, to)
	}
}

func (t traceBoundedLoad) onOverflow(host string) {
	if fn := t.OnOverflow; fn != nil {
		fn(host)
	}
}

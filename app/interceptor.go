// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app

// Interceptor wraps the dispatch of a matched route. Both methods run in
// the Application.Dispatch scope of the run state.
type Interceptor interface {
	// PreHandle reports whether dispatch goes on. On false the target and
	// the interceptors after this one are skipped; st.SetResult then sets
	// what Run returns.
	PreHandle(st *State) bool

	// PostHandle sees the recorded dispatch result. It runs only when the
	// target succeeded.
	PostHandle(st *State)
}

var (
	_     Interceptor = PreInterceptor(nil)
	_     Interceptor = PostInterceptor(nil)
	_     Interceptor = &chainInterceptor{}
	nopIt Interceptor = nopInterceptor{}
)

// PreInterceptor is a dispatch guard with no post step.
type PreInterceptor func(st *State) bool

// PreHandle calls f.
func (f PreInterceptor) PreHandle(st *State) bool { return f(st) }

// PostHandle does nothing.
func (f PreInterceptor) PostHandle(st *State) {}

// PostInterceptor observes successful dispatches.
type PostInterceptor func(st *State)

// PreHandle lets dispatch go on.
func (f PostInterceptor) PreHandle(st *State) bool { return true }

// PostHandle calls f.
func (f PostInterceptor) PostHandle(st *State) { f(st) }

type nopInterceptor struct{}

func (nopInterceptor) PreHandle(*State) bool { return true }
func (nopInterceptor) PostHandle(*State)     {}

// NewInterceptor pairs a guard and an observer. Either may be nil.
func NewInterceptor(pre PreInterceptor, post PostInterceptor) Interceptor {
	if pre == nil && post == nil {
		return nopIt
	}
	if pre == nil {
		return post
	}
	if post == nil {
		return pre
	}
	return interceptor{pre, post}
}

type interceptor struct {
	pre  PreInterceptor
	post PostInterceptor
}

func (it interceptor) PreHandle(st *State) bool { return it.pre(st) }
func (it interceptor) PostHandle(st *State)     { it.post(st) }

// ChainInterceptor nests its into one interceptor: the first given is the
// outermost, so guards run in argument order and observers in reverse.
// Nil entries are dropped and nested chains flattened.
func ChainInterceptor(its ...Interceptor) Interceptor {
	switch len(its) {
	case 0:
		return nopIt
	case 1:
		if its[0] == nil {
			return nopIt
		}
		return its[0]
	}

	ci := &chainInterceptor{make([]Interceptor, 0, len(its))}
	for _, it := range its {
		ci.addInterceptor(it)
	}

	switch len(ci.its) {
	case 0:
		return nopIt
	case 1:
		return ci.its[0]
	}
	return ci
}

type chainInterceptor struct {
	its []Interceptor
}

func (ci *chainInterceptor) addInterceptor(it Interceptor) {
	if it == nil || it == nopIt {
		return
	}

	if subci, ok := it.(*chainInterceptor); ok {
		ci.its = append(ci.its, subci.its...)
	} else {
		ci.its = append(ci.its, it)
	}
}

func (ci *chainInterceptor) PreHandle(st *State) bool {
	for _, it := range ci.its {
		if !it.PreHandle(st) {
			return false
		}
	}
	return true
}

func (ci *chainInterceptor) PostHandle(st *State) {
	for i := len(ci.its) - 1; i >= 0; i-- {
		ci.its[i].PostHandle(st)
	}
}

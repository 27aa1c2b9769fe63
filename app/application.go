// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package app drives routing and dispatch through an application
// lifecycle.
//
// A run triggers the events below in order. Callbacks registered with On
// run in the scope of their event, highest priority first, with the run
// State as argument bag:
//
//	Application.Initialize    first run only
//	Application.PreRoute
//	Application.PostRoute     the RouteMatch service is set
//	Application.PreDispatch
//	Application.Dispatch      the matched target runs in this scope
//	Application.PostDispatch
//	Application.Error         unroutable request or failed dispatch
//
// A trivial example is:
//
//	a, err := app.New(app.WithSource(pframe.NewCLISource(os.Args[1:])))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a.AddRoute("hello", pframe.RouteSpec{
//	    Spec:         "$ hello :name",
//	    Dispatchable: locator.Handler(func(name string) string { return "hello " + name }, "name"),
//	})
//	out, err := a.Run(context.Background())
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cnotch/pframe"
	"github.com/cnotch/pframe/locator"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Lifecycle events.
const (
	EventInitialize   = "Application.Initialize"
	EventPreRoute     = "Application.PreRoute"
	EventPostRoute    = "Application.PostRoute"
	EventPreDispatch  = "Application.PreDispatch"
	EventDispatch     = "Application.Dispatch"
	EventPostDispatch = "Application.PostDispatch"
	EventError        = "Application.Error"
)

// Services registered by New.
const (
	ServiceApplication   = "Application"
	ServiceState         = "State"
	ServiceLocator       = "ServiceLocator"
	ServiceConfiguration = "Configuration"
	ServiceRouter        = "Router"
	ServiceRouteStack    = "RouteStack"
	ServiceRouteMatch    = "RouteMatch"
	ServiceRouterSource  = "RouterSource"
	ServiceHTTPSource    = "HTTPSource"
	ServiceCLISource     = "CLISource"
)

// Dispatch parameters added for HTTP sources.
const (
	ParamHTTPURI    = "HttpUri"
	ParamHTTPMethod = "HttpMethod"
)

const tracerName = "github.com/cnotch/pframe/app"

var sourceType = locator.TypeOf[pframe.Source]()

// Application routes the source of its router and dispatches the matched
// route through the lifecycle events.
//
// An Application may be run many times, but not concurrently.
type Application struct {
	services *locator.ServiceLocator
	router   *pframe.Router
	config   *Configuration
	logger   *log.Logger
	tracer   trace.Tracer
	source   pframe.Source
	features []Feature

	hooks       hooks
	interceptor Interceptor

	initOnce sync.Once
	initErr  error
}

// Option configures an Application.
type Option interface {
	apply(*Application)
}

type optionFunc func(*Application)

func (f optionFunc) apply(a *Application) { f(a) }

// WithLocator sets the service locator. By default New creates one.
func WithLocator(l *locator.ServiceLocator) Option {
	return optionFunc(func(a *Application) { a.services = l })
}

// WithRouter sets the router. By default New creates one logging to the
// application logger.
func WithRouter(r *pframe.Router) Option {
	return optionFunc(func(a *Application) { a.router = r })
}

// WithConfiguration sets the configuration. Its routes are added to the
// route stack.
func WithConfiguration(c *Configuration) Option {
	return optionFunc(func(a *Application) { a.config = c })
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return optionFunc(func(a *Application) {
		if l != nil {
			a.logger = l
		}
	})
}

// WithTracerProvider sets the provider of the lifecycle tracer. The
// default tracer records nothing.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return optionFunc(func(a *Application) {
		if tp != nil {
			a.tracer = tp.Tracer(tracerName)
		}
	})
}

// WithSource sets the source the router routes.
func WithSource(src pframe.Source) Option {
	return optionFunc(func(a *Application) { a.source = src })
}

// WithFeatures registers features once the application is bootstrapped.
func WithFeatures(fs ...Feature) Option {
	return optionFunc(func(a *Application) { a.features = append(a.features, fs...) })
}

// WithInterceptors sets the interceptors wrapped around dispatch.
func WithInterceptors(its ...Interceptor) Option {
	return optionFunc(func(a *Application) { a.Use(its...) })
}

// New returns a bootstrapped application.
func New(opts ...Option) (*Application, error) {
	a := &Application{
		logger:      log.New(io.Discard),
		interceptor: nopIt,
	}
	for _, opt := range opts {
		opt.apply(a)
	}
	if a.services == nil {
		a.services = locator.New()
	}
	if a.config == nil {
		a.config = NewConfiguration(nil)
	}
	if a.router == nil {
		a.router = pframe.New(pframe.WithLogger(a.logger))
	}
	if a.tracer == nil {
		a.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	if a.source != nil {
		a.router.SetSource(a.source)
	}

	if err := a.bootstrap(); err != nil {
		return nil, err
	}
	if err := a.AddRoutes(a.config.Routes()...); err != nil {
		return nil, err
	}
	for _, f := range a.features {
		if err := a.RegisterFeature(f); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Application) bootstrap() error {
	services := []struct {
		name  string
		value any
	}{
		{ServiceApplication, a},
		{ServiceLocator, a.services},
		{ServiceConfiguration, a.config},
		{ServiceRouter, a.router},
		{ServiceRouteStack, a.router.RouteStack()},
	}
	for _, s := range services {
		if err := a.services.Set(s.name, s.value); err != nil {
			return fmt.Errorf("app: bootstrap: %w", err)
		}
	}
	return a.registerSource(a.router.Source())
}

func (a *Application) registerSource(src pframe.Source) error {
	if src == nil {
		return nil
	}
	if err := a.services.Set(ServiceRouterSource, src, locator.WithType(sourceType), locator.Modifiable()); err != nil {
		return err
	}
	switch s := src.(type) {
	case *pframe.HTTPSource:
		return a.services.Set(ServiceHTTPSource, s, locator.Modifiable())
	case *pframe.CLISource:
		return a.services.Set(ServiceCLISource, s, locator.Modifiable())
	}
	return nil
}

// Services returns the service locator.
func (a *Application) Services() *locator.ServiceLocator { return a.services }

// Router returns the router.
func (a *Application) Router() *pframe.Router { return a.router }

// Configuration returns the configuration.
func (a *Application) Configuration() *Configuration { return a.config }

// Logger returns the logger.
func (a *Application) Logger() *log.Logger { return a.logger }

// SetSource replaces the source of the router and its services.
func (a *Application) SetSource(src pframe.Source) error {
	a.router.SetSource(src)
	return a.registerSource(src)
}

// AddService registers a service. A *locator.Dispatchable value is
// registered as a factory.
func (a *Application) AddService(name string, v any, opts ...locator.ServiceOption) error {
	if d, ok := v.(*locator.Dispatchable); ok {
		return a.services.SetFactory(name, d, opts...)
	}
	return a.services.Set(name, v, opts...)
}

// AddRoute adds a route to the route stack and returns its name.
func (a *Application) AddRoute(name string, rs pframe.RouteSpec) (string, error) {
	return a.router.RouteStack().Add(name, rs)
}

// AddRoutes adds routes to the route stack in order.
func (a *Application) AddRoutes(routes ...pframe.NamedRouteSpec) error {
	return a.router.RouteStack().AddAll(routes...)
}

// On registers a callback for event. Callbacks with a higher priority run
// first.
func (a *Application) On(event string, d *locator.Dispatchable, priority int) *Application {
	if d == nil {
		panic("app: nil callback for " + event)
	}
	a.hooks.add(event, d, priority)
	return a
}

// OnFunc registers fn as a callback for event. See locator.Func.
func (a *Application) OnFunc(event string, priority int, fn any, names ...string) *Application {
	return a.On(event, locator.Handler(fn, names...), priority)
}

// Use appends interceptors around dispatch.
func (a *Application) Use(its ...Interceptor) {
	all := append([]Interceptor{a.interceptor}, its...)
	a.interceptor = ChainInterceptor(all...)
}

// RegisterFeature registers f.
func (a *Application) RegisterFeature(f Feature) error {
	if err := f.Register(a); err != nil {
		return fmt.Errorf("app: feature: %w", err)
	}
	return nil
}

// Initialize triggers the Initialize event unless it ran already. Run
// calls it.
func (a *Application) Initialize(ctx context.Context) error {
	return a.initialize(a.newState(ctx))
}

func (a *Application) initialize(st *State) error {
	a.initOnce.Do(func() {
		a.initErr = a.trigger(st, EventInitialize, nil)
		if a.initErr == nil {
			a.logger.Info("application initialized", "run_id", st.RunID())
		}
	})
	return a.initErr
}

func (a *Application) newState(ctx context.Context) *State {
	return NewState(ctx, a.services, uuid.NewString())
}

// Run routes the source of the router and dispatches the match. It
// returns the result of the dispatch scope.
//
// When no route matches, Run dispatches the last match of the router if
// any. Otherwise the Error event fires and Run returns an
// *UnroutableError. The target's arguments are resolved strictly: a
// required argument missing from the state makes the route
// undispatchable. A failed dispatch fires the Error event and its error
// is returned after the PostDispatch event.
func (a *Application) Run(ctx context.Context) (any, error) {
	st := a.newState(ctx)
	ctx, span := a.tracer.Start(st.Context(), "Application.Run",
		trace.WithAttributes(attribute.String("pframe.run_id", st.RunID())))
	defer span.End()
	st.ctx = ctx

	result, err := a.run(st)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (a *Application) run(st *State) (any, error) {
	if err := a.initialize(st); err != nil {
		return nil, err
	}
	if !a.hooks.has(EventError) {
		if err := a.RegisterFeature(DefaultErrorHandler()); err != nil {
			return nil, err
		}
	}
	if err := a.services.Set(ServiceState, st, locator.Modifiable()); err != nil {
		return nil, err
	}

	if err := a.trigger(st, EventPreRoute, nil); err != nil {
		return nil, a.fail(st, err)
	}
	m, routed := a.router.Route()
	if routed {
		if err := a.services.Set(ServiceRouteMatch, m, locator.Modifiable()); err != nil {
			return nil, err
		}
	}
	if err := a.trigger(st, EventPostRoute, nil); err != nil {
		return nil, a.fail(st, err)
	}

	if !routed {
		if m = a.router.LastMatch(); m == nil {
			err := &UnroutableError{Source: sourceKind(a.router.Source())}
			a.triggerError(st, ErrorUnroutable, err)
			return st.Result(EventError), err
		}
		a.logger.Warn("no route matches, using last match", "route", m.Name(), "run_id", st.RunID())
		if err := a.services.Set(ServiceRouteMatch, m, locator.Modifiable()); err != nil {
			return nil, err
		}
	}

	if err := a.trigger(st, EventPreDispatch, nil); err != nil {
		return nil, a.fail(st, err)
	}
	dispatchErr := a.dispatch(st, m)
	if err := a.trigger(st, EventPostDispatch, nil); err != nil && dispatchErr == nil {
		return st.Result(EventDispatch), a.fail(st, err)
	}
	return st.Result(EventDispatch), dispatchErr
}

func (a *Application) dispatch(st *State, m *pframe.RouteMatch) (err error) {
	d := m.Dispatchable()
	if d == nil {
		err = &UndispatchableError{Route: m.Name()}
		a.triggerError(st, ErrorUndispatchable, err)
		return err
	}

	params := map[string]any(m.Params())
	if hs, ok := a.router.Source().(*pframe.HTTPSource); ok {
		params[ParamHTTPURI] = hs.URI()
		params[ParamHTTPMethod] = hs.Method()
	}

	ctx, span := a.tracer.Start(st.ctx, EventDispatch, trace.WithAttributes(
		attribute.String("pframe.route", m.Name()),
		attribute.String("pframe.dispatchable", d.String()),
	))
	prev := st.ctx
	st.ctx = ctx
	st.PushScope(EventDispatch, params)
	defer func() {
		st.PopScope()
		st.ctx = prev
		span.End()
	}()

	if !a.interceptor.PreHandle(st) {
		a.logger.Debug("dispatch intercepted", "route", m.Name(), "run_id", st.RunID())
		return nil
	}
	result, err := a.services.Invoke(d, st, locator.Strict)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, locator.ErrUnresolvableArgument) {
			err = &UndispatchableError{Route: m.Name(), Err: err}
			a.triggerError(st, ErrorUndispatchable, err)
			return err
		}
		a.triggerError(st, ErrorException, err)
		return err
	}
	st.SetResult(result)
	a.interceptor.PostHandle(st)
	a.logger.Debug("dispatched", "route", m.Name(), "run_id", st.RunID())
	return nil
}

// trigger runs the callbacks of event in a scope of that name.
func (a *Application) trigger(st *State, event string, params map[string]any) error {
	cbs := a.hooks.list(event)
	ctx, span := a.tracer.Start(st.ctx, event, trace.WithAttributes(
		attribute.Int("pframe.callbacks", len(cbs)),
	))
	prev := st.ctx
	st.ctx = ctx
	st.PushScope(event, params)
	defer func() {
		st.PopScope()
		st.ctx = prev
		span.End()
	}()

	for _, cb := range cbs {
		result, err := a.services.Invoke(cb.d, st, locator.Permissive)
		if err != nil {
			err = &CallbackError{Event: event, Callback: cb.d.String(), Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		switch {
		case result == NullifyResult:
			st.SetResult(nil)
		case result != nil:
			st.SetResult(result)
		}
	}
	return nil
}

func (a *Application) triggerError(st *State, typ string, err error) {
	if terr := a.trigger(st, EventError, map[string]any{"type": typ, "error": err}); terr != nil {
		a.logger.Error("error callback failed", "run_id", st.RunID(), "err", terr)
	}
}

// fail reports a lifecycle callback failure through the Error event.
func (a *Application) fail(st *State, err error) error {
	a.triggerError(st, ErrorException, err)
	return err
}

func sourceKind(src pframe.Source) pframe.SourceKind {
	if src == nil {
		return 0
	}
	return src.Kind()
}

package funcify

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/born-ml/jitlink/internal/dispatch"
	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/elemwise"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/link"
	"github.com/born-ml/jitlink/internal/logger"
	"github.com/born-ml/jitlink/internal/parallel"
)

// Handler builds the kernel for one op.
type Handler func(ctx context.Context, d *Dispatcher, op graph.Op, opts Options) (*jit.Kernel, error)

// Config holds dispatcher-wide defaults.
type Config struct {
	// Vectorize makes Elemwise kernels broadcast over array arguments.
	// When false an Elemwise op compiles to its bare scalar kernel.
	Vectorize bool
	// Parallel controls how vectorized element loops are split.
	Parallel parallel.Config
}

// DefaultConfig returns vectorization on and CPU-count parallelism.
func DefaultConfig() Config {
	return Config{
		Vectorize: true,
		Parallel:  parallel.DefaultConfig(),
	}
}

// Dispatcher owns the handler registries and the compiler kernels are built with.
type Dispatcher struct {
	cfg      Config
	logger   *zap.Logger
	tracer   trace.Tracer
	compiler *jit.Compiler

	funcs     *dispatch.Registry[Handler]
	typifiers *dispatch.Registry[TypifyHandler]
	freeze    sync.Once
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = log }
}

// WithTracer sets the tracer used for funcify and compile spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = tracer }
}

// WithCompiler sets the compiler kernels are built with.
func WithCompiler(c *jit.Compiler) Option {
	return func(d *Dispatcher) { d.compiler = c }
}

// New creates a dispatcher with the built-in handlers registered.
func New(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:       cfg,
		logger:    zap.NewNop(),
		tracer:    noop.NewTracerProvider().Tracer("funcify"),
		funcs:     dispatch.New[Handler]("funcify"),
		typifiers: dispatch.New[TypifyHandler]("typify"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.compiler == nil {
		d.compiler = jit.NewCompiler(jit.WithLogger(d.logger), jit.WithTracer(d.tracer))
	}

	d.registerBuiltins()
	d.registerTypifiers()
	return d
}

func (d *Dispatcher) registerBuiltins() {
	must(Register[*graph.FunctionGraph](d, funcifyFunctionGraph))
	must(Register[*scalar.ScalarOp](d, funcifyScalarOp))
	must(Register[*scalar.Composite](d, funcifyComposite))
	must(Register[*elemwise.Elemwise](d, funcifyElemwise))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

var (
	defaultOnce       sync.Once
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide dispatcher, created on first use with
// DefaultConfig.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher = New(DefaultConfig())
	})
	return defaultDispatcher
}

// Register adds a handler for ops of type T (and types embedding T).
// It fails once the dispatcher has been used.
func Register[T any](d *Dispatcher, h Handler) error {
	return dispatch.Register[T](d.funcs, h)
}

// RegisterTypify adds a literal conversion for values of type T.
func RegisterTypify[T any](d *Dispatcher, h TypifyHandler) error {
	return dispatch.Register[T](d.typifiers, h)
}

// Compiler returns the compiler kernels are built with.
func (d *Dispatcher) Compiler() *jit.Compiler {
	return d.compiler
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// SupportedOps lists the op types with a registered handler.
func (d *Dispatcher) SupportedOps() []string {
	return d.funcs.Types()
}

// Options carry per-call configuration to handlers.
type Options struct {
	Node          *graph.Apply   // node the op belongs to, if any
	Order         []*graph.Apply // evaluation order for function graphs
	InputStorage  []*link.Cell
	OutputStorage []*link.Cell
	StorageMap    link.StorageMap
	Vectorize     bool
}

// FuncifyOption sets one field of Options.
type FuncifyOption func(*Options)

// WithNode passes the node being converted.
func WithNode(node *graph.Apply) FuncifyOption {
	return func(o *Options) { o.Node = node }
}

// WithOrder fixes the evaluation order of a function graph.
func WithOrder(order []*graph.Apply) FuncifyOption {
	return func(o *Options) { o.Order = order }
}

// WithInputStorage supplies one cell per function graph input.
func WithInputStorage(cells []*link.Cell) FuncifyOption {
	return func(o *Options) { o.InputStorage = cells }
}

// WithOutputStorage supplies one cell per function graph output.
func WithOutputStorage(cells []*link.Cell) FuncifyOption {
	return func(o *Options) { o.OutputStorage = cells }
}

// WithStorageMap supplies shared storage for function graph variables.
func WithStorageMap(sm link.StorageMap) FuncifyOption {
	return func(o *Options) { o.StorageMap = sm }
}

// WithVectorize overrides Config.Vectorize for this call.
func WithVectorize(on bool) FuncifyOption {
	return func(o *Options) { o.Vectorize = on }
}

// Funcify returns a compiled kernel implementing op. The handler is chosen
// by op's runtime type; when none matches the error is an
// *UnsupportedOpError and no kernel is returned.
func (d *Dispatcher) Funcify(ctx context.Context, op graph.Op, opts ...FuncifyOption) (*jit.Kernel, error) {
	d.freeze.Do(d.freezeRegistries)

	o := Options{Vectorize: d.cfg.Vectorize}
	for _, opt := range opts {
		opt(&o)
	}

	if graph.IsNil(op) {
		return nil, &UnsupportedOpError{Op: op}
	}
	h, ok := d.funcs.Lookup(op)
	if !ok {
		return nil, &UnsupportedOpError{Op: op}
	}

	ctx, span := d.tracer.Start(ctx, "funcify",
		trace.WithAttributes(attribute.String("funcify.op", op.OpName())))
	defer span.End()

	log := logger.FromContext(ctx, d.logger)
	log.Debug("funcify", zap.String("op", op.OpName()), zap.String("type", fmt.Sprintf("%T", op)))

	k, err := h(ctx, d, op, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return k, nil
}

func (d *Dispatcher) freezeRegistries() {
	d.funcs.Freeze()
	d.typifiers.Freeze()
}

// convertFunc adapts Funcify to the per-node conversion callback of link.
func (d *Dispatcher) convertFunc(o Options) link.ConvertFunc {
	return func(ctx context.Context, op graph.Op, node *graph.Apply, storage link.StorageMap) (jit.Func, error) {
		k, err := d.Funcify(ctx, op,
			WithNode(node),
			WithStorageMap(storage),
			WithVectorize(o.Vectorize),
		)
		if err != nil {
			return nil, err
		}
		return k.Func(), nil
	}
}

package jit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Cache defaults. Kernels are cheap to keep, so entries live long.
const (
	DefaultCacheTTL         = time.Hour
	DefaultCacheCleanupTick = 10 * time.Minute
)

// Compiler compiles Funcs into Kernels.
// It is safe for concurrent use.
type Compiler struct {
	logger *zap.Logger
	tracer trace.Tracer
	cache  *gocache.Cache
	ttl    time.Duration
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Compiler) { c.logger = log }
}

// WithTracer sets the tracer used for compile spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Compiler) { c.tracer = tracer }
}

// WithCache sets the kernel cache expiration and cleanup interval.
// A non-positive ttl keeps entries forever.
func WithCache(ttl, cleanup time.Duration) Option {
	return func(c *Compiler) {
		if ttl <= 0 {
			ttl = gocache.NoExpiration
		}
		c.ttl = ttl
		c.cache = gocache.New(ttl, cleanup)
	}
}

// NewCompiler creates a compiler. Without options it logs nowhere, traces
// nowhere and caches kernels for DefaultCacheTTL.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer("jit"),
		cache:  gocache.New(DefaultCacheTTL, DefaultCacheCleanupTick),
		ttl:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type compileOptions struct {
	sig Signature
}

// CompileOption configures a single compilation.
type CompileOption func(*compileOptions)

// WithSignature fixes the kernel's argument and output counts.
func WithSignature(sig Signature) CompileOption {
	return func(o *compileOptions) { o.sig = sig }
}

// Compile builds a kernel from fn.
func (c *Compiler) Compile(ctx context.Context, name string, fn Func, opts ...CompileOption) (*Kernel, error) {
	o := compileOptions{sig: AnySignature}
	for _, opt := range opts {
		opt(&o)
	}

	_, span := c.tracer.Start(ctx, "jit.compile", trace.WithAttributes(
		attribute.String("kernel.name", name),
		attribute.String("kernel.signature", o.sig.String()),
	))
	defer span.End()

	if err := c.check(fn, o.sig); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	k := &Kernel{
		id:   uuid.New(),
		name: name,
		sig:  o.sig,
		fn:   fn,
	}
	span.SetAttributes(attribute.String("kernel.id", k.id.String()))
	c.logger.Debug("compiled kernel",
		zap.String("name", name),
		zap.Stringer("signature", o.sig),
		zap.Stringer("id", k.id),
	)
	return k, nil
}

func (c *Compiler) check(fn Func, sig Signature) error {
	if fn == nil {
		return ErrNilFunc
	}
	return sig.validate()
}

// CompileCached returns the kernel cached under key, building and compiling
// it on a miss. Errors from build are returned unchanged and nothing is
// cached.
func (c *Compiler) CompileCached(ctx context.Context, key, name string, build func() (Func, error), opts ...CompileOption) (*Kernel, error) {
	hashed := cacheKey(key)
	if v, ok := c.cache.Get(hashed); ok {
		if k, ok := v.(*Kernel); ok {
			c.logger.Debug("kernel cache hit", zap.String("key", key))
			return k, nil
		}
		c.logger.Error("wrong type in kernel cache", zap.String("key", key))
	}

	fn, err := build()
	if err != nil {
		return nil, err
	}
	k, err := c.Compile(ctx, name, fn, opts...)
	if err != nil {
		return nil, err
	}

	// Another goroutine may have won the race; keep its kernel.
	if err := c.cache.Add(hashed, k, c.ttl); err != nil {
		if v, ok := c.cache.Get(hashed); ok {
			if existing, ok := v.(*Kernel); ok {
				return existing, nil
			}
		}
		c.cache.Set(hashed, k, c.ttl)
	}
	return k, nil
}

// CacheLen returns the number of cached kernels.
func (c *Compiler) CacheLen() int {
	return c.cache.ItemCount()
}

// Flush empties the kernel cache.
func (c *Compiler) Flush() {
	c.cache.Flush()
}

func cacheKey(key string) string {
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

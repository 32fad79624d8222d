package pipeline

import (
	"github.com/sumlower/sumlower/internal/ast"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/lower"
	"github.com/sumlower/sumlower/internal/token"
)

// Frontend turns source text into declarations. The surface parser lives
// outside this module; it must hand over syntactically well-formed trees.
type Frontend interface {
	Parse(fileName, source string) ([]ast.Decl, *diagnostics.DiagnosticError)
}

// Emitter renders a lowered result. The default emitter prints the internal
// rendering; a code generator can be slotted in instead.
type Emitter interface {
	Emit(out *lower.Output) (string, *diagnostics.DiagnosticError)
}

// FrontendProcessor runs the configured front end.
type FrontendProcessor struct {
	Frontend Frontend
}

func (p *FrontendProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if p.Frontend == nil {
		ctx.addError(diagnostics.NewError(diagnostics.ErrS005, token.Span{}, "no front end configured"))
		return ctx
	}
	decls, err := p.Frontend.Parse(ctx.FileName, ctx.Source)
	if err != nil {
		ctx.addError(err)
		return ctx
	}
	ctx.Decls = decls
	return ctx
}

// LowerProcessor compiles the declarations to their match-free form.
type LowerProcessor struct{}

func (p *LowerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	out, err := lower.Lower(ctx.Decls)
	if err != nil {
		ctx.addError(err)
		return ctx
	}
	ctx.Output = out
	return ctx
}

// EmitProcessor renders the lowered result. A nil Emitter falls back to the
// plain rendering.
type EmitProcessor struct {
	Emitter Emitter
}

func (p *EmitProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Output == nil {
		ctx.addError(diagnostics.NewError(diagnostics.ErrS005, token.Span{}, "nothing to emit: lowering did not run"))
		return ctx
	}
	if p.Emitter == nil {
		ctx.Emitted = ctx.Output.String()
		return ctx
	}
	emitted, err := p.Emitter.Emit(ctx.Output)
	if err != nil {
		ctx.addError(err)
		return ctx
	}
	ctx.Emitted = emitted
	return ctx
}

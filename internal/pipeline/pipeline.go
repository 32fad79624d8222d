// Package pipeline wires the stages of one lowering run together. A run
// carries its state in a PipelineContext; stages implement Processor and
// hand the context down the chain. The surface parser and the final emitter
// are collaborators behind small interfaces, so the chain can run with any
// front end that produces declarations.
package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. The chain stops at the first stage that records
// an error: a run either fully succeeds or aborts with one diagnostic.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.HasErrors() {
			break
		}
		ctx = processor.Process(ctx)
	}
	return ctx
}

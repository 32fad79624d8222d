package ast

// Deep copies. Substitution rewrites trees in place, so every snapshot the
// renaming and closure-conversion machinery takes must be an owned copy.

func (l *Lifetime) CloneLifetime() *Lifetime {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func (s *PathSegment) cloneSegment() PathSegment {
	c := *s
	if s.Args != nil {
		c.Args = make([]GenericArg, len(s.Args))
		for i, a := range s.Args {
			c.Args[i] = a.CloneArg()
		}
	}
	return c
}

func (p *Path) ClonePath() Path {
	c := *p
	c.Segments = make([]PathSegment, len(p.Segments))
	for i := range p.Segments {
		c.Segments[i] = p.Segments[i].cloneSegment()
	}
	return c
}

func (q *Qualifier) CloneQualifier() *Qualifier {
	if q == nil {
		return nil
	}
	c := &Qualifier{Type: q.Type.CloneType()}
	if q.Trait != nil {
		t := q.Trait.ClonePath()
		c.Trait = &t
	}
	return c
}

func (b *TraitBound) CloneBound() *TraitBound {
	return &TraitBound{Path: b.Path.ClonePath(), Span: b.Span}
}

func CloneBounds(bounds []*TraitBound) []*TraitBound {
	if bounds == nil {
		return nil
	}
	c := make([]*TraitBound, len(bounds))
	for i, b := range bounds {
		c[i] = b.CloneBound()
	}
	return c
}

func (p *LifetimeParam) CloneParam() GenericParam {
	c := &LifetimeParam{Lifetime: p.Lifetime, Span: p.Span}
	if p.Bounds != nil {
		c.Bounds = make([]*Lifetime, len(p.Bounds))
		for i, b := range p.Bounds {
			c.Bounds[i] = b.CloneLifetime()
		}
	}
	return c
}

func (p *TypeParam) CloneParam() GenericParam {
	return &TypeParam{Ident: p.Ident, Bounds: CloneBounds(p.Bounds), Span: p.Span}
}

func (p *ConstParam) CloneParam() GenericParam {
	return &ConstParam{Ident: p.Ident, Type: p.Type.CloneType(), Span: p.Span}
}

// CloneParams deep-copies a parameter slice.
func CloneParams(params []GenericParam) []GenericParam {
	if params == nil {
		return nil
	}
	c := make([]GenericParam, len(params))
	for i, p := range params {
		c[i] = p.CloneParam()
	}
	return c
}

func (w *WherePredicate) clonePredicate() *WherePredicate {
	return &WherePredicate{Target: w.Target.CloneType(), Bounds: CloneBounds(w.Bounds), Span: w.Span}
}

func (w *WhereClause) CloneWhere() *WhereClause {
	if w == nil {
		return nil
	}
	c := &WhereClause{Span: w.Span}
	c.Predicates = make([]*WherePredicate, len(w.Predicates))
	for i, p := range w.Predicates {
		c.Predicates[i] = p.clonePredicate()
	}
	return c
}

func (g *Generics) CloneGenerics() Generics {
	return Generics{Params: CloneParams(g.Params), Where: g.Where.CloneWhere(), Span: g.Span}
}

func (a *LifetimeArg) CloneArg() GenericArg {
	return &LifetimeArg{Lifetime: a.Lifetime.CloneLifetime()}
}

func (a *TypeArg) CloneArg() GenericArg {
	return &TypeArg{Type: a.Type.CloneType()}
}

func (a *ConstArg) CloneArg() GenericArg {
	return &ConstArg{Expr: a.Expr.CloneExpr()}
}

func (t *TypePath) CloneType() Type {
	return &TypePath{Qual: t.Qual.CloneQualifier(), Path: t.Path.ClonePath(), Span: t.Span}
}

func (t *TypeTuple) CloneType() Type {
	c := &TypeTuple{Span: t.Span, Elems: make([]Type, len(t.Elems))}
	for i, e := range t.Elems {
		c.Elems[i] = e.CloneType()
	}
	return c
}

func (t *TypeRef) CloneType() Type {
	return &TypeRef{Lifetime: t.Lifetime.CloneLifetime(), Elem: t.Elem.CloneType(), Span: t.Span}
}

func (e *ExprPath) CloneExpr() Expr {
	return &ExprPath{Qual: e.Qual.CloneQualifier(), Path: e.Path.ClonePath(), Span: e.Span}
}

func (e *ExprLit) CloneExpr() Expr {
	c := *e
	return &c
}

func (e *ExprCall) CloneExpr() Expr {
	c := &ExprCall{Fn: e.Fn.CloneExpr(), Span: e.Span, Args: make([]Expr, len(e.Args))}
	for i, a := range e.Args {
		c.Args[i] = a.CloneExpr()
	}
	return c
}

func (e *ExprBinary) CloneExpr() Expr {
	return &ExprBinary{X: e.X.CloneExpr(), Op: e.Op, Y: e.Y.CloneExpr(), Span: e.Span}
}

func (e *ExprTuple) CloneExpr() Expr {
	c := &ExprTuple{Span: e.Span, Elems: make([]Expr, len(e.Elems))}
	for i, el := range e.Elems {
		c.Elems[i] = el.CloneExpr()
	}
	return c
}

func (e *ExprClosure) CloneExpr() Expr {
	c := &ExprClosure{Params: append([]string(nil), e.Params...), Body: e.Body.CloneExpr(), Span: e.Span}
	return c
}

func (l *LetBinding) cloneLet() *LetBinding {
	c := &LetBinding{Name: l.Name, Value: l.Value.CloneExpr(), Span: l.Span}
	if l.Type != nil {
		c.Type = l.Type.CloneType()
	}
	return c
}

func (e *ExprBlock) CloneExpr() Expr {
	c := &ExprBlock{Span: e.Span, Lets: make([]*LetBinding, len(e.Lets))}
	for i, l := range e.Lets {
		c.Lets[i] = l.cloneLet()
	}
	if e.Value != nil {
		c.Value = e.Value.CloneExpr()
	}
	return c
}

// CloneNode copies any node kind that can appear as a TypeLevelExpr plain
// value or a generic argument.
func CloneNode(n Node) Node {
	switch x := n.(type) {
	case Type:
		return x.CloneType()
	case Expr:
		return x.CloneExpr()
	case GenericArg:
		return x.CloneArg()
	default:
		return n
	}
}

func (e *TypeLevelExpr) CloneTypeLevel() TypeLevelExpr {
	if e.Match != nil {
		return TypeLevelExpr{Match: e.Match.CloneMatch()}
	}
	if e.Plain != nil {
		return TypeLevelExpr{Plain: CloneNode(e.Plain)}
	}
	return TypeLevelExpr{}
}

func (m *Match) CloneMatch() *Match {
	c := &Match{Span: m.Span, Scrutinees: make([]Type, len(m.Scrutinees)), Arms: make([]*Arm, len(m.Arms))}
	for i, s := range m.Scrutinees {
		c.Scrutinees[i] = s.CloneType()
	}
	for i, a := range m.Arms {
		c.Arms[i] = a.CloneArm()
	}
	return c
}

func (a *Arm) CloneArm() *Arm {
	c := &Arm{Span: a.Span, Body: a.Body.CloneTypeLevel(), Selectors: make([]*Selector, len(a.Selectors))}
	for i, s := range a.Selectors {
		c.Selectors[i] = &Selector{Variant: s.Variant, Generics: s.Generics.CloneGenerics(), Span: s.Span}
	}
	return c
}

func (p *FnParam) cloneFnParam() *FnParam {
	return &FnParam{Name: p.Name, Type: p.Type.CloneType(), Span: p.Span}
}

func (s *Signature) CloneSignature() Signature {
	c := *s
	c.Generics = s.Generics.CloneGenerics()
	c.Inputs = make([]*FnParam, len(s.Inputs))
	for i, p := range s.Inputs {
		c.Inputs[i] = p.cloneFnParam()
	}
	if s.Output != nil {
		c.Output = s.Output.CloneType()
	}
	return c
}

func (v *Variant) CloneVariant() *Variant {
	return &Variant{Ident: v.Ident, Generics: v.Generics.CloneGenerics(), Span: v.Span}
}

func (c *ImplConst) CloneImplItem() ImplItem {
	return &ImplConst{
		Ident:    c.Ident,
		Generics: c.Generics.CloneGenerics(),
		Type:     c.Type.CloneType(),
		Value:    c.Value.CloneTypeLevel(),
		Span:     c.Span,
	}
}

func (t *ImplType) CloneImplItem() ImplItem {
	return &ImplType{
		Ident:    t.Ident,
		Generics: t.Generics.CloneGenerics(),
		Bounds:   CloneBounds(t.Bounds),
		Value:    t.Value.CloneTypeLevel(),
		Span:     t.Span,
	}
}

func (f *ImplFn) CloneImplItem() ImplItem {
	return &ImplFn{Sig: f.Sig.CloneSignature(), Body: f.Body.CloneTypeLevel(), Span: f.Span}
}

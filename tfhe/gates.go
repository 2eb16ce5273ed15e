package tfhe

// CMux returns ct0 if ctrl encrypts 0, and ct1 if ctrl encrypts 1.
func (e *Evaluator) CMux(ctrl FourierGGSWCiphertext, ct0, ct1 GLWECiphertext) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.CMuxAssign(ctrl, ct0, ct1, ctOut)
	return ctOut
}

// CMuxAssign computes ctOut = ct0 + ctrl * (ct1 - ct0).
// ct0 and ct1 are not changed.
func (e *Evaluator) CMuxAssign(ctrl FourierGGSWCiphertext, ct0, ct1, ctOut GLWECiphertext) {
	e.SubGLWEAssign(ct1, ct0, e.buffer.ctGate)
	e.ExternalProductAssign(ctrl, e.buffer.ctGate, e.buffer.ctGate)
	e.AddGLWEAssign(ct0, e.buffer.ctGate, ctOut)
}

// CMuxInPlace selects between ct0 and ct1 and writes the result to ct0.
// Afterwards ct1 holds ctrl * (ct1 - ct0), the difference that was applied to ct0.
func (e *Evaluator) CMuxInPlace(ctrl FourierGGSWCiphertext, ct0, ct1 GLWECiphertext) {
	e.SubGLWEAssign(ct1, ct0, ct1)
	e.ExternalProductAssign(ctrl, ct1, ct1)
	e.AddGLWEAssign(ct0, ct1, ct0)
}

// CDemuxInPlace distributes ct0 + ct1 between ct0 and ct1.
// It computes ct1' = ctrl * (ct0 + ct1) and ct0' = ct0 - ct1'.
// When ct1 encrypts zero, the content of ct0 stays in ct0 if ctrl encrypts 0,
// and moves to ct1 if ctrl encrypts 1.
func (e *Evaluator) CDemuxInPlace(ctrl FourierGGSWCiphertext, ct0, ct1 GLWECiphertext) {
	e.AddGLWEAssign(ct1, ct0, ct1)
	e.ExternalProductAssign(ctrl, ct1, ct1)
	e.SubGLWEAssign(ct0, ct1, ct0)
}

// CDemux returns the pair (ct0', ct1') of CDemuxInPlace without changing its inputs.
func (e *Evaluator) CDemux(ctrl FourierGGSWCiphertext, ct0, ct1 GLWECiphertext) (GLWECiphertext, GLWECiphertext) {
	ctOut0, ctOut1 := ct0.Copy(), ct1.Copy()
	e.CDemuxInPlace(ctrl, ctOut0, ctOut1)
	return ctOut0, ctOut1
}

// CSwapInPlace exchanges ct0 and ct1 if ctrl encrypts 1.
// It computes delta = ctrl * (ct0 - ct1), ct0' = ct0 - delta and ct1' = ct1 + delta.
func (e *Evaluator) CSwapInPlace(ctrl FourierGGSWCiphertext, ct0, ct1 GLWECiphertext) {
	e.SubGLWEAssign(ct0, ct1, e.buffer.ctGate)
	e.ExternalProductAssign(ctrl, e.buffer.ctGate, e.buffer.ctGate)
	e.SubGLWEAssign(ct0, e.buffer.ctGate, ct0)
	e.AddGLWEAssign(ct1, e.buffer.ctGate, ct1)
}

// CSwap returns (ct1, ct0) if ctrl encrypts 1, and (ct0, ct1) otherwise.
func (e *Evaluator) CSwap(ctrl FourierGGSWCiphertext, ct0, ct1 GLWECiphertext) (GLWECiphertext, GLWECiphertext) {
	ctOut0, ctOut1 := ct0.Copy(), ct1.Copy()
	e.CSwapInPlace(ctrl, ctOut0, ctOut1)
	return ctOut0, ctOut1
}

// CMuxVectored applies CMuxInPlace between cts[c] and cts[c+stride]
// for every c that is a multiple of 2*stride.
// A trailing partial chunk takes part if it is longer than stride.
func (e *Evaluator) CMuxVectored(ctrl FourierGGSWCiphertext, cts []GLWECiphertext, stride int) {
	e.vectored(e.CMuxInPlace, ctrl, cts, stride)
}

// CDemuxVectored applies CDemuxInPlace between cts[c] and cts[c+stride]
// for every c that is a multiple of 2*stride.
// A trailing partial chunk takes part if it is longer than stride.
func (e *Evaluator) CDemuxVectored(ctrl FourierGGSWCiphertext, cts []GLWECiphertext, stride int) {
	e.vectored(e.CDemuxInPlace, ctrl, cts, stride)
}

func (e *Evaluator) vectored(gate func(FourierGGSWCiphertext, GLWECiphertext, GLWECiphertext), ctrl FourierGGSWCiphertext, cts []GLWECiphertext, stride int) {
	if stride <= 0 {
		panic("stride not positive")
	}

	chunkSize := 2 * stride
	spare := len(cts) % chunkSize

	for c := 0; c+chunkSize <= len(cts); c += chunkSize {
		gate(ctrl, cts[c], cts[c+stride])
	}

	if spare > stride {
		c := len(cts) - spare
		gate(ctrl, cts[c], cts[c+stride])
	}
}

// CSwapVectored applies CSwapInPlace between cts[c] and cts[c+stride]
// for every c = offset + 2*stride*m inside cts.
//
// The trailing partial chunk takes part if it is longer than stride.
// Otherwise, if the elements left of offset and the trailing partial chunk
// together exceed stride, the first trailing element is paired with
// cts[stride - spare], wrapping around the end of cts.
//
// Panics if offset >= stride or offset > len(cts).
func (e *Evaluator) CSwapVectored(ctrl FourierGGSWCiphertext, cts []GLWECiphertext, offset, stride int) {
	if offset < 0 || offset >= stride {
		panic("offset not in [0, stride)")
	}
	if offset > len(cts) {
		panic("offset out of range")
	}

	chunkSize := 2 * stride
	spareLeft := offset
	spareRight := (len(cts) - spareLeft) % chunkSize

	for c := offset; c+chunkSize <= len(cts); c += chunkSize {
		e.CSwapInPlace(ctrl, cts[c], cts[c+stride])
	}

	switch {
	case spareRight > stride:
		c := len(cts) - spareRight
		e.CSwapInPlace(ctrl, cts[c], cts[c+stride])
	case spareLeft+spareRight > stride:
		c := len(cts) - spareRight
		e.CSwapInPlace(ctrl, cts[c], cts[stride-spareRight])
	}
}

package tfhe

// BlindRotateStepAssign computes ct += ctrl * (X^d - 1) * ct.
// This multiplies ct by X^d if ctrl encrypts 1, and leaves it unchanged if ctrl encrypts 0.
func (e *Evaluator) BlindRotateStepAssign(ctrl FourierGGSWCiphertext, ct GLWECiphertext, d int) {
	e.MonomialSubOneMulGLWEAssign(ct, d, e.buffer.ctRotate)
	e.ExternalProductAddAssign(ctrl, e.buffer.ctRotate, ct)
}

// BlindRotateLeftInPlace multiplies ct by X^v, where bits[i] encrypts the i-th bit of v.
// Bits are consumed from the most significant one.
// Coefficient j of ct moves to coefficient j + v, negated when it wraps around.
func (e *Evaluator) BlindRotateLeftInPlace(bits []FourierGGSWCiphertext, ct GLWECiphertext) {
	for i := len(bits) - 1; i >= 0; i-- {
		e.BlindRotateStepAssign(bits[i], ct, 1<<i)
	}
}

// BlindRotateRightInPlace multiplies ct by X^-v, where bits[i] encrypts the i-th bit of v.
// Bits are consumed from the least significant one.
// Coefficient v of ct moves to coefficient 0.
func (e *Evaluator) BlindRotateRightInPlace(bits []FourierGGSWCiphertext, ct GLWECiphertext) {
	for i := range bits {
		e.BlindRotateStepAssign(bits[i], ct, 2*e.Parameters.polyDegree-(1<<i))
	}
}

// BlindRotateLeft returns X^v * ct, where bits[i] encrypts the i-th bit of v.
func (e *Evaluator) BlindRotateLeft(bits []FourierGGSWCiphertext, ct GLWECiphertext) GLWECiphertext {
	ctOut := ct.Copy()
	e.BlindRotateLeftInPlace(bits, ctOut)
	return ctOut
}

// BlindRotateRight returns X^-v * ct, where bits[i] encrypts the i-th bit of v.
func (e *Evaluator) BlindRotateRight(bits []FourierGGSWCiphertext, ct GLWECiphertext) GLWECiphertext {
	ctOut := ct.Copy()
	e.BlindRotateRightInPlace(bits, ctOut)
	return ctOut
}

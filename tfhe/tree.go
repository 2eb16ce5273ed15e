package tfhe

// CMuxTree collapses cts to the element addressed by selectors, and leaves it at cts[0].
// selectors[i] is the i-th least significant bit of the address.
// Pass i applies CMuxVectored with stride 2^i, from the least significant bit upwards.
// Other elements of cts are overwritten with intermediate values.
func (e *Evaluator) CMuxTree(selectors []FourierGGSWCiphertext, cts []GLWECiphertext) {
	for i, ctrl := range selectors {
		e.CMuxVectored(ctrl, cts, 1<<i)
	}
}

// CDemuxTree distributes cts[0] to the element addressed by selectors.
// selectors[i] is the i-th least significant bit of the address.
// Pass i applies CDemuxVectored with stride 2^i, from the most significant bit downwards.
// Every other element of cts must encrypt zero beforehand, and encrypts zero afterwards.
func (e *Evaluator) CDemuxTree(selectors []FourierGGSWCiphertext, cts []GLWECiphertext) {
	for i := len(selectors) - 1; i >= 0; i-- {
		e.CDemuxVectored(selectors[i], cts, 1<<i)
	}
}

// DeepCSwap runs an exchange network over cts driven by selectors.
// Level i swaps every pair of elements 2^i apart, for each of the 2^i offsets,
// wrapping around the end of cts.
func (e *Evaluator) DeepCSwap(selectors []FourierGGSWCiphertext, cts []GLWECiphertext) {
	for i, ctrl := range selectors {
		for j := 0; j < 1<<i; j++ {
			e.CSwapVectored(ctrl, cts, j, 1<<i)
		}
	}
}

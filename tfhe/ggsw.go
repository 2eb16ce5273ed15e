package tfhe

// GGSWCiphertext represents a GGSW ciphertext,
// which is a GLWERank+1 collection of GLev ciphertexts.
// Value[i] encrypts the message scaled by the i-th component of the key,
// where the 0th component is the constant one of the body.
type GGSWCiphertext struct {
	GadgetParameters GadgetParameters

	// Value has length GLWERank + 1.
	Value []GLevCiphertext
}

// NewGGSWCiphertext allocates an empty GGSW ciphertext.
func NewGGSWCiphertext(params Parameters, gadgetParams GadgetParameters) GGSWCiphertext {
	ct := make([]GLevCiphertext, params.glweRank+1)
	for i := 0; i < params.glweRank+1; i++ {
		ct[i] = NewGLevCiphertext(params, gadgetParams)
	}
	return GGSWCiphertext{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct GGSWCiphertext) Copy() GGSWCiphertext {
	ctCopy := make([]GLevCiphertext, len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return GGSWCiphertext{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// FourierGGSWCiphertext is a GGSW ciphertext in the Fourier domain.
// It is the form selectors take when they drive gates.
type FourierGGSWCiphertext struct {
	GadgetParameters GadgetParameters

	// Value has length GLWERank + 1.
	Value []FourierGLevCiphertext
}

// NewFourierGGSWCiphertext allocates an empty FourierGGSWCiphertext.
func NewFourierGGSWCiphertext(params Parameters, gadgetParams GadgetParameters) FourierGGSWCiphertext {
	ct := make([]FourierGLevCiphertext, params.glweRank+1)
	for i := 0; i < params.glweRank+1; i++ {
		ct[i] = NewFourierGLevCiphertext(params, gadgetParams)
	}
	return FourierGGSWCiphertext{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct FourierGGSWCiphertext) Copy() FourierGGSWCiphertext {
	ctCopy := make([]FourierGLevCiphertext, len(ct.Value))
	for i := range ct.Value {
		lev := make([]FourierGLWECiphertext, len(ct.Value[i].Value))
		for j := range lev {
			lev[j] = ct.Value[i].Value[j].Copy()
		}
		ctCopy[i] = FourierGLevCiphertext{Value: lev, GadgetParameters: ct.Value[i].GadgetParameters}
	}
	return FourierGGSWCiphertext{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

package tfhe

var (
	// ParamsWiSARD is a parameter set for encrypted lookup tables with N = 1024.
	ParamsWiSARD = ParametersLiteral{
		LWEDimension: 742,
		GLWERank:     1,
		PolyDegree:   1024,

		LWEStdDev:  0.000007629394531250,
		GLWEStdDev: 0.000000029802322387695312,

		GGSWParameters: GadgetParametersLiteral{
			Base:  1 << 6,
			Level: 4,
		},
		PackingKeySwitchParameters: GadgetParametersLiteral{
			Base:  1 << 8,
			Level: 3,
		},
		KeySwitchParameters: GadgetParametersLiteral{
			Base:  1 << 4,
			Level: 5,
		},
	}

	// ParamsWiSARD2048 is a parameter set for encrypted lookup tables with N = 2048.
	// It leaves more room for noise, at the cost of larger keys.
	ParamsWiSARD2048 = ParametersLiteral{
		LWEDimension: 742,
		GLWERank:     1,
		PolyDegree:   2048,

		LWEStdDev:  0.000007629394531250,
		GLWEStdDev: 0.0000000000000003472576015484159,

		GGSWParameters: GadgetParametersLiteral{
			Base:  1 << 16,
			Level: 2,
		},
		PackingKeySwitchParameters: GadgetParametersLiteral{
			Base:  1 << 12,
			Level: 3,
		},
		KeySwitchParameters: GadgetParametersLiteral{
			Base:  1 << 4,
			Level: 5,
		},
	}

	// ParamsTest is an insecure parameter set for tests and examples.
	ParamsTest = ParametersLiteral{
		LWEDimension: 64,
		GLWERank:     1,
		PolyDegree:   256,

		LWEStdDev:  0.0000000009313225746154785,
		GLWEStdDev: 0.0000000000009094947017729282,

		GGSWParameters: GadgetParametersLiteral{
			Base:  1 << 12,
			Level: 3,
		},
		PackingKeySwitchParameters: GadgetParametersLiteral{
			Base:  1 << 8,
			Level: 4,
		},
		KeySwitchParameters: GadgetParametersLiteral{
			Base:  1 << 6,
			Level: 4,
		},
	}
)

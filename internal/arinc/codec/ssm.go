package codec

// SSM is the 2-bit Sign/Status Matrix (or BCD sign) field, bits 29..30.
type SSM uint8

const (
	// BCD sign values.
	BcdPlus            SSM = 0
	BcdNoComputedData  SSM = 1
	BcdFunctionalTest  SSM = 2
	BcdMinus           SSM = 3

	// BNR validity values. BNR never encodes sign in the SSM field.
	BnrFailureWarning  SSM = 0
	BnrNoComputedData  SSM = 1
	BnrFunctionalTest  SSM = 2
	BnrNormalOperation SSM = 3

	// Discrete validity values.
	DiscVerifiedNormal   SSM = 0
	DiscNoComputedData   SSM = 1
	DiscFunctionalTest   SSM = 2
	DiscFailureWarning   SSM = 3
)

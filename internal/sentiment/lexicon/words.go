package lexicon

// polarity of common review vocabulary in [-1, 1].
var words = map[string]float64{
	// strongly positive
	"excellent":   1.0,
	"amazing":     0.9,
	"awesome":     0.9,
	"perfect":     1.0,
	"outstanding": 1.0,
	"fantastic":   0.9,
	"superb":      1.0,
	"wonderful":   0.9,
	"brilliant":   0.9,
	"best":        1.0,
	"love":        0.8,
	"loved":       0.8,
	"loves":       0.8,
	"flawless":    0.9,
	"exceptional": 0.9,
	"incredible":  0.9,
	"delighted":   0.8,

	// positive
	"good":        0.6,
	"great":       0.8,
	"nice":        0.6,
	"happy":       0.7,
	"satisfied":   0.6,
	"recommend":   0.6,
	"recommended": 0.6,
	"beautiful":   0.7,
	"fast":        0.3,
	"sturdy":      0.5,
	"reliable":    0.5,
	"comfortable": 0.5,
	"worth":       0.4,
	"useful":      0.4,
	"pleased":     0.6,
	"solid":       0.4,
	"works":       0.3,
	"genuine":     0.5,
	"original":    0.4,
	"cheap":       0.2,
	"affordable":  0.4,
	"like":        0.3,
	"liked":       0.4,
	"thanks":      0.3,
	"thank":       0.3,
	"smooth":      0.4,
	"helpful":     0.5,
	"friendly":    0.5,
	"better":      0.5,
	"bagus":       0.6,
	"mantap":      0.8,
	"puas":        0.7,
	"cepat":       0.3,

	// neutral
	"okay":     0.0,
	"ok":       0.0,
	"average":  0.0,
	"fine":     0.1,
	"decent":   0.2,
	"alright":  0.1,
	"standard": 0.0,
	"normal":   0.0,
	"lumayan":  0.1,

	// negative
	"bad":           -0.7,
	"poor":          -0.6,
	"slow":          -0.3,
	"late":          -0.3,
	"disappointed":  -0.7,
	"disappointing": -0.7,
	"problem":       -0.4,
	"problems":      -0.4,
	"issue":         -0.3,
	"issues":        -0.3,
	"damaged":       -0.7,
	"defective":     -0.8,
	"fake":          -0.7,
	"wrong":         -0.5,
	"missing":       -0.5,
	"flimsy":        -0.5,
	"cheaply":       -0.4,
	"expensive":     -0.3,
	"overpriced":    -0.5,
	"difficult":     -0.3,
	"annoying":      -0.5,
	"unhappy":       -0.6,
	"mediocre":      -0.3,
	"meh":           -0.2,
	"return":        -0.3,
	"returned":      -0.4,
	"refund":        -0.4,
	"rusak":         -0.7,
	"kecewa":        -0.7,
	"jelek":         -0.6,
	"lambat":        -0.3,

	// strongly negative
	"terrible":  -1.0,
	"horrible":  -1.0,
	"awful":     -1.0,
	"worst":     -1.0,
	"useless":   -0.9,
	"garbage":   -1.0,
	"trash":     -0.9,
	"junk":      -0.9,
	"broke":     -0.6,
	"broken":    -0.7,
	"hate":      -0.9,
	"hated":     -0.9,
	"scam":      -1.0,
	"waste":     -0.8,
	"pathetic":  -0.9,
	"dangerous": -0.8,
}

var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"none":    true,
	"nothing": true,
	"hardly":  true,
	"barely":  true,
	"without": true,
	"tidak":   true,
	"gak":     true,
	"nggak":   true,
	"kurang":  true,
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"extremely":  1.5,
	"super":      1.4,
	"so":         1.2,
	"totally":    1.3,
	"absolutely": 1.4,
	"highly":     1.3,
	"quite":      1.1,
	"slightly":   0.6,
	"somewhat":   0.7,
	"sangat":     1.3,
	"banget":     1.3,
}

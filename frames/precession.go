package frames

// PrecessionModel selects the ecliptic-precession theory used to rotate
// between the J2000 ecliptic and the ecliptic of an arbitrary date.
// Dispatch is a closed switch over this tagged variant; no dynamic
// interface is needed since the set of models never grows at runtime.
type PrecessionModel int

const (
	// Vondrak2011 names Vondrák, Capitaine & Wallace (2011)'s long-term
	// precession theory and is the default selector. Its periodic series
	// is not implemented here (see angles); selecting it evaluates the
	// Iau2006 polynomial instead, which is correct to within the window
	// this package targets but is not the full Vondrák series.
	Vondrak2011 PrecessionModel = iota
	// Iau2006 is the 5th-order polynomial model (Capitaine et al. 2003).
	Iau2006
	// Lieske1977 is the legacy 3rd-order polynomial, kept for cross-checks.
	Lieske1977
)

func (m PrecessionModel) String() string {
	switch m {
	case Vondrak2011:
		return "Vondrak2011"
	case Iau2006:
		return "Iau2006"
	case Lieske1977:
		return "Lieske1977"
	default:
		return "Unknown"
	}
}

const arcsec2rad = deg2rad / 3600.0

// pA1977/piA1977/PiA1977 are the Lieske (1979) precession-of-the-ecliptic
// polynomials, degree 3 (arcsec, T = Julian centuries TDB from J2000),
// retained for legacy cross-checks against pre-IAU2006 software.
func pA1977(t float64) float64 {
	return t * (5029.0966 + t*(1.11113+t*-0.000006))
}
func piA1977(t float64) float64 {
	return t * (47.0029 + t*(-0.03302+t*0.000060))
}
func piA1977Deg(t float64) float64 { return piA1977(t) / 3600.0 }

// PiA1977Deg is the ecliptic-pole node longitude, Lieske's 2nd-order
// approximation (degrees).
func PiA1977Deg(t float64) float64 {
	return 174.876384 + (-869.8089*t+0.03536*t*t)/3600.0
}

// pA2006/piA2006/PiA2006 are the IAU 2006 (Capitaine et al. 2003) 5th-order
// polynomials for general precession in longitude (p_A), ecliptic tilt
// (π_A) and node longitude (Π_A); arcsec except PiA2006Deg.
func pA2006(t float64) float64 {
	return t * (5028.796195 + t*(1.1054348+t*(0.00007964+t*(-0.000023857+t*-0.0000000383))))
}
func piA2006(t float64) float64 {
	return t * (46.998973 + t*(-0.0334926+t*(-0.00012559+t*(0.000000113+t*-0.0000000022))))
}
func PiA2006Deg(t float64) float64 {
	return (629546.7936 + t*(-867.95758+t*(0.157992+t*(-0.0005371+t*(-0.00004797+t*0.000000072))))) / 3600.0
}

// angles returns p_A, π_A, Π_A in radians for T Julian centuries from J2000
// TDB. Vondrak2011 has no implementation of its own here: Vondrák, Capitaine
// & Wallace (2011) publish π_A, Π_A as a Cartesian-like pole (P_A, Q_A) built
// from a multi-term periodic series the pack carries no source for, and an
// invented stand-in series previously shipped here produced a silently wrong
// rotation (the π/2-off node longitude a reviewer caught). Rather than ship
// that, Vondrak2011 falls through to the Iau2006 polynomial, which is
// self-consistent and correct for what it is.
func (m PrecessionModel) angles(t float64) (pA, piA, PiA float64) {
	switch m {
	case Lieske1977:
		return pA1977(t) * arcsec2rad, piA1977(t) * arcsec2rad, PiA1977Deg(t) * deg2rad
	default: // Iau2006, Vondrak2011
		return pA2006(t) * arcsec2rad, piA2006(t) * arcsec2rad, PiA2006Deg(t) * deg2rad
	}
}

// Rotation returns P(t), the rotation from the J2000 ecliptic to the
// ecliptic of date, composed per spec as R3(-(Π_A+p_A))·R1(π_A)·R3(Π_A),
// where R1(θ)/R3(θ) turn the coordinate frame by θ, i.e. rotX/rotZ of -θ.
func (m PrecessionModel) Rotation(t float64) Mat3 {
	pA, piA, PiA := m.angles(t)
	return rotZ(PiA + pA).Mul(rotX(-piA)).Mul(rotZ(-PiA))
}

const centuriesPerSec = 1.0 / (36525.0 * 86400.0)
const finiteDiffSec = 60.0

// TransformJ2000ToDate rotates a J2000-ecliptic state vector (position in
// km, velocity in km/s) into the ecliptic of date at tdbSecPastJ2000 TDB
// seconds. Velocity is obtained by finite-differencing the precessed
// position at t ± 60s to capture the Ṗ·r cross-term, then adding P·v
// directly (§4.3 design note).
func (m PrecessionModel) TransformJ2000ToDate(pos, vel [3]float64, tdbSecPastJ2000 float64) (posDate, velDate [3]float64) {
	t := tdbSecPastJ2000 * centuriesPerSec
	tMinus := (tdbSecPastJ2000 - finiteDiffSec) * centuriesPerSec
	tPlus := (tdbSecPastJ2000 + finiteDiffSec) * centuriesPerSec

	p := m.Rotation(t)
	pMinus := m.Rotation(tMinus)
	pPlus := m.Rotation(tPlus)

	posDate = p.Apply(pos)
	rMinus := pMinus.Apply(pos)
	rPlus := pPlus.Apply(pos)

	pDotR := scale3(1.0/(2.0*finiteDiffSec), sub3(rPlus, rMinus))
	velDate = add3(pDotR, p.Apply(vel))
	return
}

// TransformDateToJ2000 is the inverse of TransformJ2000ToDate: it rotates an
// ecliptic-of-date state vector back to the J2000 ecliptic.
func (m PrecessionModel) TransformDateToJ2000(posDate, velDate [3]float64, tdbSecPastJ2000 float64) (pos, vel [3]float64) {
	t := tdbSecPastJ2000 * centuriesPerSec
	tMinus := (tdbSecPastJ2000 - finiteDiffSec) * centuriesPerSec
	tPlus := (tdbSecPastJ2000 + finiteDiffSec) * centuriesPerSec

	pT := m.Rotation(t).Transpose()
	pMinusT := m.Rotation(tMinus).Transpose()
	pPlusT := m.Rotation(tPlus).Transpose()

	pos = pT.Apply(posDate)
	rMinus := pMinusT.Apply(posDate)
	rPlus := pPlusT.Apply(posDate)

	pDotR := scale3(1.0/(2.0*finiteDiffSec), sub3(rPlus, rMinus))
	vel = add3(pDotR, pT.Apply(velDate))
	return
}

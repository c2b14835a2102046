package lasmeta

// classificationNames gives the ASPRS standard name for codes 0-18; see
// ClassificationName for the fallback bands above that.
var classificationNames = map[uint8]string{
	0:  "Created, Never Classified",
	1:  "Unclassified",
	2:  "Ground",
	3:  "Low Vegetation",
	4:  "Medium Vegetation",
	5:  "High Vegetation",
	6:  "Building",
	7:  "Low Point (Noise)",
	8:  "Reserved",
	9:  "Water",
	10: "Rail",
	11: "Road Surface",
	12: "Reserved",
	13: "Wire - Guard (Shield)",
	14: "Wire - Conductor (Phase)",
	15: "Transmission Tower",
	16: "Wire-Structure Connector",
	17: "Bridge Deck",
	18: "High Noise",
}

// ClassificationName returns the ASPRS standard name for a classification
// code: the codes 0-18 have specific names, 19-63 are "Reserved", and
// 64-255 are "User Defined".
func ClassificationName(code uint8) string {
	if name, ok := classificationNames[code]; ok {
		return name
	}
	if code <= 63 {
		return "Reserved"
	}
	return "User Defined"
}

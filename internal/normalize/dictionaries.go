package normalize

// typoCorrections maps common misspellings seen in real inventory uploads to
// their corrected forms. Matched as whole words, after upper-casing.
var typoCorrections = map[string]string{
	"PACKGE":      "PACKAGE",
	"PACKAG":      "PACKAGE",
	"CHILER":      "CHILLER",
	"CHILLAR":     "CHILLER",
	"COMPRESOR":   "COMPRESSOR",
	"CENTRIFUGEL": "CENTRIFUGAL",
	"SPILT":       "SPLIT",
	"EXAUST":      "EXHAUST",
	"EXHUAST":     "EXHAUST",
	"VENTILATON":  "VENTILATION",
	"ELEVETOR":    "ELEVATOR",
	"ESCALTOR":    "ESCALATOR",
	"TRANSFORMOR": "TRANSFORMER",
	"GENRATOR":    "GENERATOR",
	"GENERTOR":    "GENERATOR",
	"EXTINGISHER": "EXTINGUISHER",
	"SPRINKLR":    "SPRINKLER",
	"CONDITIONNG": "CONDITIONING",
	"HANDELING":   "HANDLING",
	"HANDILING":   "HANDLING",
}

// abbreviationExpansions maps a canonical abbreviation or phrase to full-form
// synonyms used as additional search terms. Keys of length <= 2 are only
// expanded on exact equality, never on substring containment.
var abbreviationExpansions = map[string][]string{
	"AHU":            {"AIR HANDLING UNIT", "AIR HANDLER"},
	"FAHU":           {"FRESH AIR HANDLING UNIT"},
	"FRESH AIR UNIT": {"FRESH AIR HANDLING UNIT"},
	"FCU":            {"FAN COIL UNIT"},
	"VRF":            {"VARIABLE REFRIGERANT FLOW SYSTEM"},
	"VRV":            {"VARIABLE REFRIGERANT FLOW SYSTEM"},
	"VAV":            {"VARIABLE AIR VOLUME UNIT"},
	"DX UNIT":        {"DIRECT EXPANSION UNIT"},
	"PKG UNIT":       {"PACKAGE UNIT", "PACKAGED AIR CONDITIONING UNIT"},
	"PACKAGE UNIT":   {"PACKAGED AIR CONDITIONING UNIT", "ROOFTOP PACKAGE UNIT"},
	"SPLIT AC":       {"SPLIT AIR CONDITIONER"},
	"CHWP":           {"CHILLED WATER PUMP"},
	"CDWP":           {"CONDENSER WATER PUMP"},
	"COOLING TWR":    {"COOLING TOWER"},
	"EXH FAN":        {"EXHAUST FAN"},
	"WC":             {"WATER CLOSET", "TOILET"},
	"WH":             {"WATER HEATER"},
	"SWH":            {"SOLAR WATER HEATER"},
	"DB":             {"DISTRIBUTION BOARD", "ELECTRICAL PANEL"},
	"SMDB":           {"SUB MAIN DISTRIBUTION BOARD"},
	"MDB":            {"MAIN DISTRIBUTION BOARD"},
	"MCC":            {"MOTOR CONTROL CENTER"},
	"ATS":            {"AUTOMATIC TRANSFER SWITCH"},
	"UPS":            {"UNINTERRUPTIBLE POWER SUPPLY"},
	"GENSET":         {"DIESEL GENERATOR SET", "GENERATOR"},
	"CCTV":           {"CLOSED CIRCUIT TELEVISION CAMERA", "SECURITY CAMERA"},
	"ACS":            {"ACCESS CONTROL SYSTEM"},
	"FACP":           {"FIRE ALARM CONTROL PANEL"},
	"FM200":          {"CLEAN AGENT FIRE SUPPRESSION SYSTEM"},
	"FIRE EXT":       {"FIRE EXTINGUISHER"},
	"BMS":            {"BUILDING MANAGEMENT SYSTEM"},
	"STP":            {"SEWAGE TREATMENT PLANT"},
	"RO PLANT":       {"REVERSE OSMOSIS PLANT"},
}

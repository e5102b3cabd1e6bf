package airports

// airportZones maps uppercase airport codes to IANA zone identifiers.
var airportZones = map[string]string{
	// US Eastern.
	"IAD": "America/New_York", // Washington Dulles
	"DCA": "America/New_York", // Washington Reagan
	"JFK": "America/New_York",
	"LGA": "America/New_York",
	"EWR": "America/New_York", // Newark
	"BOS": "America/New_York",
	"PIT": "America/New_York",
	"PHL": "America/New_York",
	"BWI": "America/New_York",
	"CLT": "America/New_York",
	"ATL": "America/New_York",
	"MIA": "America/New_York",
	"MCO": "America/New_York", // Orlando
	"FLL": "America/New_York",
	"TPA": "America/New_York",
	"JAX": "America/New_York",
	"CHS": "America/New_York",
	"SAV": "America/New_York",
	"ORF": "America/New_York",
	"RIC": "America/New_York",

	// US Central.
	"ORD": "America/Chicago",
	"MDW": "America/Chicago",
	"DFW": "America/Chicago",
	"IAH": "America/Chicago",
	"HOU": "America/Chicago",
	"MSY": "America/Chicago",
	"BNA": "America/Chicago",
	"MEM": "America/Chicago",
	"STL": "America/Chicago",
	"MCI": "America/Chicago",
	"MSP": "America/Chicago",
	"MKE": "America/Chicago",
	"DSM": "America/Chicago",
	"OMA": "America/Chicago",
	"OKC": "America/Chicago",
	"TUL": "America/Chicago",
	"LIT": "America/Chicago",
	"BHM": "America/Chicago",
	"JAN": "America/Chicago", // Jackson

	// US Mountain. Arizona does not observe DST.
	"DEN": "America/Denver",
	"ABQ": "America/Denver",
	"SLC": "America/Denver",
	"ELP": "America/Denver",
	"COS": "America/Denver",
	"GJT": "America/Denver",
	"ASE": "America/Denver",
	"DRO": "America/Denver",
	"BOI": "America/Boise",
	"PHX": "America/Phoenix",
	"TUS": "America/Phoenix",

	// US Pacific.
	"LAX": "America/Los_Angeles",
	"SFO": "America/Los_Angeles",
	"SAN": "America/Los_Angeles",
	"OAK": "America/Los_Angeles",
	"SJC": "America/Los_Angeles",
	"SAC": "America/Los_Angeles",
	"SMF": "America/Los_Angeles",
	"ONT": "America/Los_Angeles",
	"BUR": "America/Los_Angeles",
	"LGB": "America/Los_Angeles",
	"PSP": "America/Los_Angeles",
	"SEA": "America/Los_Angeles",
	"PDX": "America/Los_Angeles",
	"GEG": "America/Los_Angeles",
	"LAS": "America/Los_Angeles",
	"RNO": "America/Los_Angeles",

	// Alaska.
	"ANC": "America/Anchorage",
	"FAI": "America/Anchorage",
	"JNU": "America/Anchorage",

	// Hawaii.
	"HNL": "Pacific/Honolulu",
	"OGG": "Pacific/Honolulu",
	"KOA": "Pacific/Honolulu",
	"LIH": "Pacific/Honolulu",

	// Europe.
	"LHR": "Europe/London",
	"LGW": "Europe/London",
	"CDG": "Europe/Paris",
	"FRA": "Europe/Berlin",
	"AMS": "Europe/Amsterdam",
	"MAD": "Europe/Madrid",
	"BCN": "Europe/Madrid",
	"FCO": "Europe/Rome",
	"MXP": "Europe/Rome",
	"ZRH": "Europe/Zurich",
	"VIE": "Europe/Vienna",
	"BRU": "Europe/Brussels",
	"ARN": "Europe/Stockholm",
	"CPH": "Europe/Copenhagen",
	"OSL": "Europe/Oslo",
	"HEL": "Europe/Helsinki",
	"WAW": "Europe/Warsaw",
	"PRG": "Europe/Prague",
	"BUD": "Europe/Budapest",
	"ATH": "Europe/Athens",
	"IST": "Europe/Istanbul",
	"DME": "Europe/Moscow",
	"SVO": "Europe/Moscow",
	"LED": "Europe/Moscow",

	// Asia.
	"NRT": "Asia/Tokyo",
	"HND": "Asia/Tokyo",
	"ICN": "Asia/Seoul",
	"GMP": "Asia/Seoul",
	"PEK": "Asia/Shanghai",
	"PVG": "Asia/Shanghai",
	"SHA": "Asia/Shanghai",
	"CAN": "Asia/Shanghai",
	"SZX": "Asia/Shanghai",
	"HKG": "Asia/Hong_Kong",
	"TPE": "Asia/Taipei",
	"SIN": "Asia/Singapore",
	"BKK": "Asia/Bangkok",
	"KUL": "Asia/Kuala_Lumpur",
	"CGK": "Asia/Jakarta",
	"MNL": "Asia/Manila",
	"DEL": "Asia/Kolkata",
	"BOM": "Asia/Kolkata",
	"BLR": "Asia/Kolkata",
	"HYD": "Asia/Kolkata",
	"CCU": "Asia/Kolkata",

	// Oceania.
	"SYD": "Australia/Sydney",
	"MEL": "Australia/Melbourne",
	"BNE": "Australia/Brisbane",
	"PER": "Australia/Perth",
	"ADL": "Australia/Adelaide",
	"AKL": "Pacific/Auckland",
	"WLG": "Pacific/Auckland",

	// Middle East.
	"DXB": "Asia/Dubai",
	"AUH": "Asia/Dubai",
	"DOH": "Asia/Qatar",
	"RUH": "Asia/Riyadh",
	"JED": "Asia/Riyadh",
	"TLV": "Asia/Jerusalem",
	"AMM": "Asia/Amman",
	"BEY": "Asia/Beirut",

	// Africa.
	"JNB": "Africa/Johannesburg",
	"CPT": "Africa/Johannesburg",
	"CAI": "Africa/Cairo",
	"NBO": "Africa/Nairobi",
	"LOS": "Africa/Lagos",
	"ACC": "Africa/Accra",
	"DAR": "Africa/Dar_es_Salaam",

	// Latin America.
	"GRU": "America/Sao_Paulo",
	"GIG": "America/Sao_Paulo",
	"BSB": "America/Sao_Paulo",
	"EZE": "America/Argentina/Buenos_Aires",
	"SCL": "America/Santiago",
	"LIM": "America/Lima",
	"BOG": "America/Bogota",
	"MEX": "America/Mexico_City",
	"GDL": "America/Mexico_City",
	"MTY": "America/Mexico_City",
	"CUN": "America/Cancun",
	"GUA": "America/Guatemala",
	"SJO": "America/Costa_Rica",
	"PTY": "America/Panama",
	"CCS": "America/Caracas",
	"UIO": "America/Guayaquil",
	"GYE": "America/Guayaquil",
	"ASU": "America/Asuncion",
	"MVD": "America/Montevideo",
}

// cityAirports maps city names, as they appear on confirmations, to a
// representative airport code.
var cityAirports = map[string]string{
	"Washington":      "IAD",
	"New York":        "JFK",
	"New York/Newark": "EWR",
	"Newark":          "EWR",
	"Boston":          "BOS",
	"Pittsburgh":      "PIT",
	"Philadelphia":    "PHL",
	"Baltimore":       "BWI",
	"Charlotte":       "CLT",
	"Atlanta":         "ATL",
	"Miami":           "MIA",
	"Orlando":         "MCO",
	"Fort Lauderdale": "FLL",
	"Tampa":           "TPA",
	"Jacksonville":    "JAX",
	"Chicago":         "ORD",
	"Dallas":          "DFW",
	"Houston":         "IAH",
	"New Orleans":     "MSY",
	"Nashville":       "BNA",
	"St. Louis":       "STL",
	"Kansas City":     "MCI",
	"Minneapolis":     "MSP",
	"Denver":          "DEN",
	"Phoenix":         "PHX",
	"Salt Lake City":  "SLC",
	"Las Vegas":       "LAS",
	"Los Angeles":     "LAX",
	"San Francisco":   "SFO",
	"San Diego":       "SAN",
	"San Jose":        "SJC",
	"Sacramento":      "SMF",
	"Seattle":         "SEA",
	"Portland":        "PDX",
	"Anchorage":       "ANC",
	"Honolulu":        "HNL",
	"London":          "LHR",
	"Paris":           "CDG",
	"Frankfurt":       "FRA",
	"Amsterdam":       "AMS",
	"Madrid":          "MAD",
	"Rome":            "FCO",
	"Zurich":          "ZRH",
	"Tokyo":           "NRT",
	"Seoul":           "ICN",
	"Beijing":         "PEK",
	"Shanghai":        "PVG",
	"Hong Kong":       "HKG",
	"Singapore":       "SIN",
	"Sydney":          "SYD",
	"Auckland":        "AKL",
	"Dubai":           "DXB",
	"Mexico City":     "MEX",
	"Cancun":          "CUN",
	"Sao Paulo":       "GRU",
	"Buenos Aires":    "EZE",
}

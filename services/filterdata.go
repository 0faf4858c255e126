package services

// Hand-tuned phrase and marker lists for the Spanish-language marketplace.
// These are tuning data, not logic: deliberately conservative, with a known
// false-positive surface. Change them as data edits only.

// badPhrases marks listings that are broken, incomplete, loose accessories,
// wanted-ads or service offers. "cambio" gets special context handling in
// isBadByText and is skipped in the plain substring pass.
var badPhrases = []string{
	// broken / bad condition
	"roto",
	"rota",
	"averiado",
	"averiada",
	"no funciona",
	"no enciende",
	"no carga",
	"pantalla rota",
	"sin probar",
	"para piezas",
	"por piezas",
	"piezas",
	"despiece",
	"repuesto",
	// incomplete / loose accessory
	"solo caja",
	"caja vacia",
	"caja vacía",
	"solo mando",
	"mando suelto",
	"solo cargador",
	"cargador suelto",
	"solo funda",
	"funda suelta",
	"solo carcasa",
	"carcasa suelta",
	"incompleto",
	"sin accesorios",
	// not the product / not a normal sale
	"busco",
	"compro",
	"se compra",
	"cambio",
	"alquilo",
	"servicio",
	"instalacion",
	"instalación",
	"reparacion",
	"reparación",
	"cuenta",
	"suscripcion",
	"suscripción",
}

// accessoryPrefixes flag titles that open with an accessory-type word.
var accessoryPrefixes = []string{
	"mando",
	"mandos",
	"controller",
	"cable",
	"cargador",
	"funda",
	"carcasa",
	"protector",
	"protector de pantalla",
	"auriculares",
	"soporte",
	"base",
	"dock",
	"adaptador",
	"bateria",
	"batería",
	"kit",
	"juego",
	"juegos",
	"volante",
	"camara",
	"cámara",
	"vr",
	"gafas",
}

// accessoryPhrases are "only X" phrasings that usually mean a bare accessory.
var accessoryPhrases = []string{
	"solo mando",
	"mando suelto",
	"solo cable",
	"solo cargador",
	"solo funda",
	"solo carcasa",
	"solo juego",
	"solo juegos",
	"sin consola",
}

// primaryMarkers imply the primary product itself is part of the ad.
var primaryMarkers = []string{
	"consola",
	"telefono",
	"teléfono",
	"movil",
	"móvil",
	"smartphone",
	"portatil",
	"portátil",
	"laptop",
	"ordenador",
	"computador",
	"pc",
	"tablet",
	"ipad",
	"camara",
	"cámara",
	"dron",
	"drone",
	"tv",
	"televisor",
	"monitor",
}

// consoleKeywordMarkers detect keywords that target a game console.
var consoleKeywordMarkers = []string{
	"ps4",
	"ps5",
	"playstation",
	"xbox",
	"switch",
	"nintendo",
	"wii",
	"steam deck",
}

// consoleDeviceMarkers are hardware-capacity/variant hints that the ad is for
// the console itself rather than an accessory or a game.
var consoleDeviceMarkers = []string{
	"slim",
	"pro",
	"oled",
	"lite",
	"series x",
	"series s",
	"one s",
	"one x",
	"1tb",
	"2tb",
	"500gb",
	"gb",
	"tb",
	"v2",
}

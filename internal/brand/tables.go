package brand

// knownBrands lists the canonical brand names the resolver can fall back
// to when the brand directory has no mapping for an input.
var knownBrands = []string{
	"GUESS", "Gucci", "Burberry", "Dior", "Brunello Cucinelli", "Prada", "Versace",
	"Chanel", "Louis Vuitton", "Fendi", "Balenciaga", "Givenchy", "Armani",
	"Dolce & Gabbana", "Hermès", "Yves Saint Laurent", "Bottega Veneta", "Saint Laurent",
	"Alexander McQueen", "Celine", "Valentino", "Loro Piana", "Moncler", "Zegna",
	"Max Mara", "Salvatore Ferragamo", "Stella McCartney", "Miu Miu", "Chloé",
	"Balmain", "Loewe", "Kenzo", "Issey Miyake", "Acne Studios", "A.P.C.", "Off-White",
	"Rick Owens", "Comme des Garçons", "Maison Margiela", "Jil Sander", "Lanvin",
	"Proenza Schouler", "Sacai", "The Row", "Victoria Beckham", "Courrèges",
	"Trussardi", "Missoni", "Moschino", "Etro", "Emilio Pucci", "Alberta Ferretti",
	"Roberto Cavalli", "Tod’s", "Hogan", "Aspesi", "Boglioli", "Canali", "Corneliani",
	"Pal Zileri", "Kiton", "La Perla", "Aquazzura", "Giuseppe Zanotti", "Sergio Rossi",
	"A.Testoni", "Fratelli Rossetti", "Geox", "Pollini", "Les Copains", "Pinko",
	"Patrizia Pepe", "Liu Jo", "Blumarine", "Agnona", "Lardini", "Fay", "N°21",
	"Redemption", "Philosophy di Lorenzo Serafini", "MSGM", "GCDS", "Sunnei", "Plan C",
	"Marco de Vincenzo",
	"Tom Ford", "Ralph Lauren", "Calvin Klein", "Michael Kors", "Tory Burch", "Kate Spade",
	"DKNY", "Ganni", "Zimmermann", "Sandro", "Maje", "Ba&sh", "Claudie Pierlot",
	"Reformation", "Nanushka", "Staud", "Rixo", "Self-Portrait", "Ulla Johnson",
	"Veronica Beard", "Carolina Herrera", "Oscar de la Renta", "Marchesa", "Jason Wu",
	"Prabal Gurung", "Rodarte", "Thom Browne", "Altuzarra", "Brandon Maxwell", "Khaite",
	"Tibi", "Erdem", "Emilia Wickstead", "Roksanda", "Molly Goddard", "Simone Rocha",
	"Christopher Kane", "JW Anderson", "Anya Hindmarch", "Mulberry", "Strathberry",
	"Manu Atelier", "Coperni", "Amina Muaddi", "Mach & Mach", "Gia Borghini",
	"Paris Texas", "Le Silla", "Stuart Weitzman", "Jimmy Choo", "Manolo Blahnik",
	"Christian Louboutin", "Roger Vivier",
}

// brandAbbreviations maps short aliases submitters actually type to
// canonical brand names.
var brandAbbreviations = map[string]string{
	"lv":  "Louis Vuitton",
	"ysl": "Yves Saint Laurent",
	"d&g": "Dolce & Gabbana",
	"cc":  "Chanel",
	"bv":  "Bottega Veneta",
	"sl":  "Saint Laurent",
	"mcq": "Alexander McQueen",
	"dg":  "Dolce & Gabbana",
	"apc": "A.P.C.",
	"mm":  "Maison Margiela",
	"cdg": "Comme des Garçons",
	"mcm": "Moncler",
	"sf":  "Salvatore Ferragamo",
	"sm":  "Stella McCartney",
	"mmr": "Max Mara",
	"lo":  "Loewe",
	"kn":  "Kenzo",
	"im":  "Issey Miyake",
	"as":  "Acne Studios",
	"ow":  "Off-White",
	"ro":  "Rick Owens",
	"js":  "Jil Sander",
	"ln":  "Lanvin",
	"ps":  "Proenza Schouler",
	"sc":  "Sacai",
	"tr":  "Trussardi",
	"cr":  "Courrèges",
	"pr":  "Prada",
	"vs":  "Versace",
	"ar":  "Armani",
	"hm":  "Hermès",
	"bl":  "Balenciaga",
	"gv":  "Givenchy",
	"fd":  "Fendi",
	"di":  "Dior",
	"bc":  "Burberry",
	"gs":  "GUESS",
	"ms":  "Missoni",
	"mo":  "Moschino",
	"et":  "Etro",
	"pu":  "Emilio Pucci",
	"af":  "Alberta Ferretti",
	"rc":  "Roberto Cavalli",
	"td":  "Tod’s",
	"hg":  "Hogan",
	"ap":  "Aspesi",
	"bg":  "Boglioli",
	"cn":  "Canali",
	"co":  "Corneliani",
	"pz":  "Pal Zileri",
	"kt":  "Kiton",
	"lp":  "La Perla",
	"aq":  "Aquazzura",
	"gz":  "Giuseppe Zanotti",
	"sr":  "Simone Rocha",
	"at":  "A.Testoni",
	"fr":  "Fratelli Rossetti",
	"gx":  "Geox",
	"pl":  "Pollini",
	"lc":  "Les Copains",
	"pk":  "Pinko",
	"pp":  "Patrizia Pepe",
	"lj":  "Liu Jo",
	"ag":  "Agnona",
	"ld":  "Lardini",
	"fy":  "Fay",
	"n21": "N°21",
	"rd":  "Redemption",
	"ph":  "Philosophy di Lorenzo Serafini",
	"gc":  "GCDS",
	"sn":  "Sunnei",
	"pc":  "Plan C",
	"mv":  "Marco de Vincenzo",
	"tf":  "Tom Ford",
	"rl":  "Ralph Lauren",
	"mk":  "Michael Kors",
	"tb":  "Tory Burch",
	"ks":  "Kate Spade",
	"dk":  "DKNY",
	"gn":  "Ganni",
	"zm":  "Zimmermann",
	"sd":  "Sandro",
	"mj":  "Maje",
	"bs":  "Ba&sh",
	"cp":  "Claudie Pierlot",
	"rf":  "Reformation",
	"nn":  "Nanushka",
	"st":  "Staud",
	"rx":  "Rixo",
	"sp":  "Self-Portrait",
	"uj":  "Ulla Johnson",
	"vb":  "Veronica Beard",
	"ch":  "Carolina Herrera",
	"od":  "Oscar de la Renta",
	"ma":  "Marchesa",
	"jw":  "Jason Wu",
	"pg":  "Prabal Gurung",
	"rt":  "Rodarte",
	"az":  "Altuzarra",
	"bm":  "Brandon Maxwell",
	"kh":  "Khaite",
	"ti":  "Tibi",
	"ed":  "Erdem",
	"ew":  "Emilia Wickstead",
	"rk":  "Roksanda",
	"mg":  "Molly Goddard",
	"ck":  "Christopher Kane",
	"ja":  "JW Anderson",
	"ah":  "Anya Hindmarch",
	"mb":  "Mulberry",
	"sb":  "Strathberry",
	"mt":  "Manu Atelier",
	"am":  "Amina Muaddi",
	"gb":  "Gia Borghini",
	"pt":  "Paris Texas",
	"ls":  "Le Silla",
	"sw":  "Stuart Weitzman",
	"jc":  "Jimmy Choo",
	"cl":  "Christian Louboutin",
	"rv":  "Roger Vivier",
}

package spamcheck

// Trigger phrases are matched case-insensitively against subject and
// body text. Critical phrases are the classic filter tripwires; warning
// phrases only nudge the score.

var criticalTriggerWords = []string{
	"buy now",
	"act now",
	"click here",
	"free money",
	"make money fast",
	"get rich",
	"lottery",
	"casino",
	"viagra",
	"100% free",
	"risk-free",
	"no obligation",
	"guaranteed income",
	"double your",
	"limited time offer",
	"winner",
}

var warningTriggerWords = []string{
	"free",
	"discount",
	"cheap",
	"bonus",
	"cash",
	"deal",
	"offer expires",
	"urgent",
	"congratulations",
	"no cost",
	"special promotion",
}

// shortenedURLDomains trip the media scorer hard; shortened links hide
// their destination from both recipients and filters.
var shortenedURLDomains = []string{
	"bit.ly",
	"tinyurl.com",
	"goo.gl",
	"t.co",
	"ow.ly",
	"is.gd",
	"buff.ly",
	"rebrand.ly",
	"cutt.ly",
}

var suspiciousTLDs = []string{
	".xyz",
	".top",
	".click",
	".loan",
	".work",
	".gq",
	".cf",
	".tk",
	".ml",
}

// unsubscribeMarkers satisfy the compliance requirement; one match is
// enough.
var unsubscribeMarkers = []string{
	"unsubscribe",
	"opt out",
	"opt-out",
	"manage preferences",
	"email preferences",
	"{{unsubscribe",
	"%unsubscribe%",
}

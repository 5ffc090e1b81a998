package followup

// Pattern tables for follow-up detection. Matching covers English, Hindi,
// Gujarati and Hinglish (romanized). Pronouns and question words are matched
// against whole tokens; the phrase tables are matched as substrings of the
// lowercased message.

var referencePronounsEN = []string{"this", "it", "that", "these", "those"}

var referencePronounsHI = []string{"yeh", "ye", "woh", "wo", "isko", "usko", "iski", "uski", "aapko"}

var referencePronounsGU = []string{"aa", "e", "te", "shu"}

var referencePronounsHinglish = []string{"ye", "this", "wo", "that", "isko", "usko"}

var consumptionQueriesEN = []string{
	"can i eat", "can we eat", "safe to eat", "okay to eat",
	"daily", "every day", "everyday",
	"safe for kids", "safe for children", "for kids", "for children",
	"for babies", "for toddlers",
	"diabetes", "diabetic", "high bp", "blood pressure", "heart",
	"pregnant", "pregnancy", "weight loss", "lose weight",
	"healthy", "good for me", "bad for me",
}

var consumptionQueriesHI = []string{
	"kya kha sakte", "kya le sakte", "safe hai", "theek hai",
	"roz", "har din", "bachchon ke liye", "bacchon ke liye",
	"bp", "sehat", "health",
}

var consumptionQueriesGU = []string{
	"khaay shakay", "khavay", "safe che", "theek che",
	"har roj", "baalo mate", "bachcho mate", "swasth",
}

var consumptionQueriesHinglish = []string{
	"kha sakte hain", "le sakte", "safe hai kya",
	"roz kha sakte", "daily okay", "kids ke liye",
	"health ke liye", "diabetes mein",
}

var amountQueries = []string{
	"how much", "how many", "portion", "serving", "quantity",
	"kitna", "kitni", "keto", "ket lu", "amount",
}

var alternativeQueries = []string{
	"instead", "alternative", "substitute", "replace", "better option",
	"uske jagah", "badle mein",
}

var questionWords = []string{
	"what", "why", "how", "when", "should", "can",
	"kya", "kyun", "kaise", "kab", "chahiye",
	"shu", "kevi", "kyare",
}

// Words that signal the user is asking ABOUT a named product rather than
// introducing it as a new analysis target.
var askingAboutMarkers = []string{"about", "ke baare mein", "vishay", "regarding"}

var allReferencePronouns = flatten(
	referencePronounsEN, referencePronounsHI, referencePronounsGU, referencePronounsHinglish)

var allConsumptionQueries = flatten(
	consumptionQueriesEN, consumptionQueriesHI, consumptionQueriesGU, consumptionQueriesHinglish)

func flatten(lists ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range lists {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

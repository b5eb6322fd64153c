package s0_docs

import (
	"regexp"
	"strings"
)

// tickerPattern: optional $ cashtag, 2~5 uppercase letters on word boundaries
var (
	tickerPattern = regexp.MustCompile(`\$?\b[A-Z]{2,5}\b`)
	tickerToken   = regexp.MustCompile(`^[A-Z]{2,5}$`)
)

// stoplist categories. Uppercase tokens that look like tickers but are not.
var (
	stopCommonWords = []string{
		"A", "AN", "AND", "ARE", "AS", "AT", "BE", "BUT", "BY", "CAN", "DO", "FOR", "FROM", "GET", "GO", "GOT",
		"HAS", "HAD", "HAVE", "HE", "HER", "HIS", "HOW", "IF", "IN", "IS", "IT", "ITS", "JUST", "LIKE", "ME",
		"MY", "NO", "NOT", "NOW", "OF", "OLD", "ON", "ONE", "OR", "OUR", "OUT", "SO", "THAN", "THAT", "THE",
		"THEM", "THEN", "THEY", "THIS", "TO", "TOO", "UP", "US", "WAS", "WE", "WHAT", "WHEN", "WHO", "WHY",
		"WILL", "WITH", "YES", "YOU", "YOUR", "ALL", "ANY", "BIG", "NEW", "NEXT", "LAST", "BEST", "GOOD",
		"VERY", "MUCH", "MANY", "MORE", "MOST", "SOME", "ONLY", "ALSO", "EVEN", "BACK", "OVER", "STILL",
		"HERE", "THERE", "WELL", "WAY", "DAY", "YEAR", "TIME", "REAL", "HUGE", "EVER", "FREE", "HOLD", "SELL",
		"BUY", "LONG", "SHORT", "MOON", "PUMP", "DUMP", "EDIT", "OP", "OK", "OMG", "LOL", "LMAO", "WTF",
	}
	stopTradingJargon = []string{
		"CEO", "CFO", "CTO", "COO", "EPS", "PE", "PEG", "ROI", "ROE", "IPO", "ATH", "ATL", "DD", "YOLO",
		"FOMO", "FUD", "HODL", "BTFD", "DCA", "ETF", "ETFS", "ETN", "REIT", "OTC", "PT", "TA", "FA", "IV",
		"OI", "ITM", "OTM", "ATM", "EOD", "EOW", "YTD", "QOQ", "YOY", "MOM", "TTM", "FY", "Q1", "Q2", "Q3",
		"Q4", "EBIT", "EBITDA", "FCF", "GAAP", "SEC", "FINRA", "FED", "FOMC", "CPI", "PPI", "GDP", "PMI",
		"NFP", "API", "EIA", "OPEC", "IMF", "SPAC", "PUTS", "CALLS", "CALL", "PUT", "BULL", "BEAR", "RSI",
		"MACD", "SMA", "EMA", "VWAP", "HFT", "MM", "PDT", "IRA", "HSA", "TLDR", "IMO", "IMHO", "FYI", "AMA",
	}
	stopMarketGeo = []string{
		"USA", "UK", "EU", "UN", "NATO", "USD", "EUR", "GBP", "JPY", "CNY", "CAD", "AUD", "CHF", "NYSE",
		"NASDAQ", "DOW", "SP", "SPX", "NDX", "RUT", "VIX", "DXY", "WTI", "LNG", "OIL", "GAS", "CHINA",
		"JAPAN", "INDIA", "NY", "LA", "SF", "DC", "TX", "CA", "FL", "EST", "PST", "UTC", "GMT",
	}
	stopTech = []string{
		"AI", "ML", "LLM", "GPU", "CPU", "TPU", "HBM", "RAM", "SSD", "API", "SDK", "SAAS", "IOT", "EV",
		"EVS", "AR", "VR", "XR", "IT", "PC", "OS", "APP", "APPS", "WEB", "NFT", "DEFI", "BTC", "ETH", "USB",
		"HTTP", "HTML", "URL", "PDF", "CAGR",
	}
	stopSocial = []string{
		"WSB", "DM", "PM", "AM", "TIL", "ELI", "AFAIK", "IIRC", "SMH", "TBH", "IDK", "BRB", "RIP", "GG",
		"FML", "NSFW", "OC", "PSA", "ICYMI", "IRL", "ASAP", "BTW", "FAQ", "AKA",
	}
)

// stoplist is built once from the category lists
var stoplist = buildStoplist(stopCommonWords, stopTradingJargon, stopMarketGeo, stopTech, stopSocial)

func buildStoplist(groups ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, g := range groups {
		for _, w := range g {
			out[w] = struct{}{}
		}
	}
	return out
}

// IsStopword reports whether token is on the ticker stoplist
func IsStopword(token string) bool {
	_, ok := stoplist[strings.ToUpper(token)]
	return ok
}

// IsValidTicker re-validates a token: 2~5 uppercase letters and not a stopword
func IsValidTicker(token string) bool {
	return tickerToken.MatchString(token) && !IsStopword(token)
}

// ExtractTickers returns the distinct candidate tickers in text, in first-seen order
// ⭐ SSOT: 티커 추출 로직은 여기서만
func ExtractTickers(text string) []string {
	matches := tickerPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		sym := strings.TrimPrefix(m, "$")
		if IsStopword(sym) {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

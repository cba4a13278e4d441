package config

import "github.com/kovalyov-valentin/intel-feed/internal/model"

// Цвета категорий. Категория не из этого списка получает model.DefaultColor
var CategoryColors = map[string]string{
	"Cybersecurity": "#ff3333",
	"Geopolitical":  "#00ffff",
	"Technology":    "#ffff00",
	"OSINT":         "#00ff00",
	"AI/ML":         "#dd00ff",
	"Privacy":       "#ff9900",
	"Science":       "#00aaff",
	"Investigation": "#ff1493",
}

// Встроенный список источников. Заменяется файлом из seeds_file
var DefaultSources = []model.SourceSeed{
	{Name: "BleepingComputer", URL: "https://www.bleepingcomputer.com/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Dark Reading", URL: "https://www.darkreading.com/feeds/all.rss", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Securityweek", URL: "https://www.securityweek.com/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "SANS Cyber Aces", URL: "https://www.sans.org/cyber-academy/blog/feed.xml", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Recorded Future Insikt", URL: "https://insikt-group.recorded-future.com/rss.xml", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Reuters World", URL: "https://feeds.reuters.com/Reuters/worldNews", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "BBC News World", URL: "http://feeds.bbc.co.uk/news/world/rss.xml", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "Al Jazeera English", URL: "https://www.aljazeera.com/xml/rss/all.xml", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "The Guardian World", URL: "https://www.theguardian.com/world/rss", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "Associated Press", URL: "https://apnews.com/apf-services/v2/homepage.rss", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "Hacker News", URL: "https://news.ycombinator.com/rss", Color: "#ffff00", Category: "Technology"},
	{Name: "TechCrunch", URL: "http://feeds.techcrunch.com/TechCrunch/", Color: "#ffff00", Category: "Technology"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Color: "#ffff00", Category: "Technology"},
	{Name: "ArXiv CS", URL: "http://arxiv.org/rss/cs.all", Color: "#ffff00", Category: "Technology"},
	{Name: "InfoQ", URL: "https://feed.infoq.com/", Color: "#ffff00", Category: "Technology"},
	{Name: "Ars Technica", URL: "https://arstechnica.com/feed/", Color: "#ffff00", Category: "Technology"},
	{Name: "Bellingcat", URL: "https://www.bellingcat.com/feed/", Color: "#00ff00", Category: "OSINT"},
	{Name: "First Draft", URL: "https://firstdraftnews.org/feed/", Color: "#00ff00", Category: "OSINT"},
	{Name: "OSINT Combine", URL: "https://www.osintcombine.com/feed", Color: "#00ff00", Category: "OSINT"},
	{Name: "MITRE ATT&CK", URL: "https://attack.mitre.org/resources/blog/rss.xml", Color: "#00ff00", Category: "OSINT"},
	{Name: "OpenAI Blog", URL: "https://openai.com/feed.xml", Color: "#dd00ff", Category: "AI/ML"},
	{Name: "Anthropic News", URL: "https://www.anthropic.com/news.rss", Color: "#dd00ff", Category: "AI/ML"},
	{Name: "DeepMind Blog", URL: "https://www.deepmind.com/blog/feed.xml", Color: "#dd00ff", Category: "AI/ML"},
	{Name: "Papers With Code", URL: "https://paperswithcode.com/latest/feed", Color: "#dd00ff", Category: "AI/ML"},
	{Name: "Hugging Face Blog", URL: "https://huggingface.co/blog/feed.xml", Color: "#dd00ff", Category: "AI/ML"},
	{Name: "EFF Blog", URL: "https://www.eff.org/feeds/rss", Color: "#ff9900", Category: "Privacy"},
	{Name: "Access Now", URL: "https://www.accessnow.org/feed/", Color: "#ff9900", Category: "Privacy"},
	{Name: "Privacy International", URL: "https://www.privacyinternational.org/feed", Color: "#ff9900", Category: "Privacy"},
	{Name: "ProPublica", URL: "https://www.propublica.org/feeds/big-story", Color: "#ff1493", Category: "Investigation"},
	{Name: "The Intercept", URL: "https://theintercept.com/feed/?lang=en", Color: "#ff1493", Category: "Investigation"},
	{Name: "EXPLOIT-DB", URL: "https://www.exploit-db.com/rss.xml", Color: "#ff0000", Category: "Cybersecurity"},
	{Name: "NVD - NIST", URL: "https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-recent.json", Color: "#ff0000", Category: "Cybersecurity"},
	{Name: "Packet Storm Security", URL: "https://packetstormsecurity.com/files/rss/", Color: "#ff0000", Category: "Cybersecurity"},
	{Name: "MikroTik Blog", URL: "https://blog.mikrotik.com/feed/", Color: "#00aaff", Category: "Technology"},
	{Name: "Cisco Talos", URL: "https://blog.talosintelligence.com/feeds/posts/default", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Cloudflare Blog", URL: "https://blog.cloudflare.com/rss/", Color: "#ffff00", Category: "Technology"},
	{Name: "NASA Breaking News", URL: "https://www.nasa.gov/news-release/feed/", Color: "#00aaff", Category: "Science"},
	{Name: "Nature News", URL: "https://www.nature.com/nature.rss", Color: "#00aaff", Category: "Science"},
	{Name: "Scientific American", URL: "https://www.scientificamerican.com/feed/", Color: "#00aaff", Category: "Science"},
	{Name: "Phys.org", URL: "https://phys.org/rss-feed/", Color: "#00aaff", Category: "Science"},
	{Name: "Space.com", URL: "https://www.space.com/feeds/all", Color: "#00aaff", Category: "Science"},
	{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/", Color: "#ffd700", Category: "Technology"},
	{Name: "Decrypt", URL: "https://decrypt.co/feed", Color: "#ffd700", Category: "Technology"},
	{Name: "Mandiant Blog", URL: "https://www.mandiant.com/resources/blog/rss.xml", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Palo Alto Unit 42", URL: "https://unit42.paloaltonetworks.com/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "CrowdStrike Blog", URL: "https://www.crowdstrike.com/blog/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "SentinelOne Labs", URL: "https://www.sentinelone.com/labs/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Schneier on Security", URL: "https://www.schneier.com/feed/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Risky Business News", URL: "https://risky.biz/feeds/risky-business/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "Daniel Miessler", URL: "https://danielmiessler.com/feed/", Color: "#dd00ff", Category: "AI/ML"},
	{Name: "Troy Hunt", URL: "https://www.troyhunt.com/rss/", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "WIRED Threat Level", URL: "https://www.wired.com/feed/category/security/latest/rss", Color: "#ff3333", Category: "Cybersecurity"},
	{Name: "ZeroDay Initiative", URL: "https://www.zerodayinitiative.com/blog/feed/", Color: "#ff0000", Category: "Cybersecurity"},
	{Name: "Google Project Zero", URL: "https://googleprojectzero.blogspot.com/feeds/posts/default", Color: "#ff0000", Category: "Cybersecurity"},
	{Name: "Hacks/Hackers", URL: "https://www.hackshackers.com/feed/", Color: "#ff1493", Category: "Investigation"},
	{Name: "Rest of World", URL: "https://restofworld.org/feed/", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "Lawfare", URL: "https://www.lawfareblog.com/rss.xml", Color: "#00ffff", Category: "Geopolitical"},
	{Name: "Foreign Policy", URL: "https://foreignpolicy.com/feed/", Color: "#00ffff", Category: "Geopolitical"},
}

package responder

import (
	"regexp"
	"strings"
)

// Category is the interaction class of a free-text message.
type Category string

const (
	CategoryMorning    Category = "morning"
	CategoryNight      Category = "night"
	CategoryPetting    Category = "petting"
	CategoryTV         Category = "tv"
	CategoryNameCall   Category = "name_call"
	CategoryFeeding    Category = "feeding"
	CategoryHugging    Category = "hugging"
	CategorySleeping   Category = "sleeping"
	CategoryPlaying    Category = "playing"
	CategoryEating     Category = "eating"
	CategoryDrinking   Category = "drinking"
	CategoryExercising Category = "exercising"
	CategoryDancing    Category = "dancing"
	CategorySinging    Category = "singing"
	CategoryReading    Category = "reading"
	CategoryDrawing    Category = "drawing"
	CategoryCleaning   Category = "cleaning"
	CategoryWorking    Category = "working"
	CategoryShopping   Category = "shopping"
	CategoryCooking    Category = "cooking"
	CategoryStudying   Category = "studying"
	CategoryMeditating Category = "meditating"
	CategoryBrowsing   Category = "browsing"
	CategoryTraveling  Category = "traveling"
	CategoryDefault    Category = "default"
)

// rule pairs a predicate with the category it selects.
type rule struct {
	match    func(string) bool
	category Category
}

func keywords(pattern string) func(string) bool {
	re := regexp.MustCompile(`(?i)` + pattern)
	return re.MatchString
}

// rules is evaluated in order and the first match wins. Greetings come first
// so "小灰早安" is a greeting, not a name call.
var rules = []rule{
	{keywords(`早安|早上好|早啊|good\s*morning`), CategoryMorning},
	{keywords(`晚安|先睡了|good\s*night`), CategoryNight},
	{keywords(`摸摸|摸頭|拍拍|揉揉|摸你`), CategoryPetting},
	{keywords(`看電視|追劇|看劇|看電影|看節目`), CategoryTV},
	{keywords(`^小灰[!！~～。.?？]*$|小灰小灰|叫你|你在哪`), CategoryNameCall},
	{keywords(`餵|罐罐|零食|肉泥|飼料`), CategoryFeeding},
	{keywords(`抱抱|抱一下|擁抱|抱緊`), CategoryHugging},
	{keywords(`睡覺|想睡|好睏|午覺|躺平`), CategorySleeping},
	{keywords(`一起玩|陪我玩|玩耍|逗貓棒|玩球`), CategoryPlaying},
	{keywords(`吃飯|早餐|午餐|晚餐|宵夜|吃什麼`), CategoryEating},
	{keywords(`喝水|喝茶|咖啡|飲料|手搖`), CategoryDrinking},
	{keywords(`運動|跑步|健身|散步|重訓`), CategoryExercising},
	{keywords(`跳舞|舞蹈`), CategoryDancing},
	{keywords(`唱歌|哼歌|KTV`), CategorySinging},
	{keywords(`看書|閱讀|小說|漫畫`), CategoryReading},
	{keywords(`畫畫|畫圖|塗鴉|素描`), CategoryDrawing},
	{keywords(`打掃|掃地|拖地|洗碗|整理房間`), CategoryCleaning},
	{keywords(`上班|工作|加班|開會|報告`), CategoryWorking},
	{keywords(`逛街|購物|買東西|網購`), CategoryShopping},
	{keywords(`煮飯|做菜|下廚|料理`), CategoryCooking},
	{keywords(`念書|讀書|考試|複習|寫作業`), CategoryStudying},
	{keywords(`冥想|靜坐|深呼吸|瑜珈`), CategoryMeditating},
	{keywords(`滑手機|上網|刷手機|刷影片|看影片`), CategoryBrowsing},
	{keywords(`旅行|旅遊|出國|出去玩|出門`), CategoryTraveling},
}

// Classify returns the first matching category for message, or
// CategoryDefault when nothing matches.
func Classify(message string) Category {
	text := strings.TrimSpace(message)
	for _, r := range rules {
		if r.match(text) {
			return r.category
		}
	}
	return CategoryDefault
}

// Composer builds randomized interaction replies.
type Composer struct {
	chooser Chooser
}

// NewComposer creates a Composer. A nil chooser falls back to RandomChooser.
func NewComposer(ch Chooser) *Composer {
	if ch == nil {
		ch = RandomChooser{}
	}
	return &Composer{chooser: ch}
}

// InteractionResponse classifies message and returns
// base + emoticon + separator + sound, each part drawn through the chooser
// in that order.
func (c *Composer) InteractionResponse(message string) string {
	return c.ResponseFor(Classify(message))
}

// ResponseFor composes a reply for an already classified category.
func (c *Composer) ResponseFor(cat Category) string {
	pool, ok := phrasePools[cat]
	if !ok {
		pool = phrasePools[CategoryDefault]
	}
	base := pick(c.chooser, pool)
	emoticon := pick(c.chooser, emoticons)
	sound := pick(c.chooser, sounds)
	return base + emoticon + soundSeparator + sound
}

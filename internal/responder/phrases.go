package responder

// soundSeparator joins the emoticon and the trailing sound.
const soundSeparator = " "

var emoticons = []string{
	"(=^･ω･^=)",
	"(ฅ'ω'ฅ)",
	"ฅ^•ﻌ•^ฅ",
	"(=①ω①=)",
	"(๑•̀ㅂ•́)و✧",
	"(´・ω・`)",
}

var sounds = []string{
	"喵～",
	"喵嗚！",
	"呼嚕呼嚕……",
	"咪～",
	"喵喵！",
}

// phrasePools holds one to three base phrases per category.
var phrasePools = map[Category][]string{
	CategoryMorning: {
		"早安呀！今天也要少抽一點喔",
		"早～小灰已經在窗邊曬太陽等你了",
		"早安！先喝杯水再開始今天吧",
	},
	CategoryNight: {
		"晚安～小灰會在枕頭邊守著你",
		"早點睡，明天的空氣會更好聞",
	},
	CategoryPetting: {
		"小灰舒服地瞇起眼睛",
		"小灰把頭往你手心裡鑽",
		"被摸得翻肚了",
	},
	CategoryTV: {
		"小灰擠到你腿上一起看",
		"小灰盯著螢幕上的小鳥不放",
	},
	CategoryNameCall: {
		"小灰在這裡！",
		"小灰豎起耳朵跑過來了",
		"叫我嗎？",
	},
	CategoryFeeding: {
		"小灰吃得津津有味",
		"罐罐！小灰眼睛都亮了",
	},
	CategoryHugging: {
		"小灰乖乖地讓你抱",
		"小灰用小爪子回抱你",
		"抱抱充電中",
	},
	CategorySleeping: {
		"小灰也跟著打了個哈欠",
		"小灰蜷成一團陪你睡",
	},
	CategoryPlaying: {
		"小灰撲向逗貓棒",
		"小灰興奮得在地上打滾",
		"來追我呀",
	},
	CategoryEating: {
		"要好好吃飯喔，吃飽就不想抽了",
		"小灰蹲在旁邊看你吃",
	},
	CategoryDrinking: {
		"多喝水是好習慣",
		"小灰也想舔一口",
	},
	CategoryExercising: {
		"好厲害！肺肺在謝謝你",
		"小灰在旁邊幫你數拍子",
	},
	CategoryDancing: {
		"小灰跟著扭起了尾巴",
		"小灰用後腳站起來轉圈圈",
	},
	CategorySinging: {
		"小灰跟著一起合音",
		"好好聽，小灰聽到睡著了",
	},
	CategoryReading: {
		"小灰趴在書頁上不肯走",
		"小灰陪你安靜地看書",
	},
	CategoryDrawing: {
		"可以把小灰畫進去嗎",
		"小灰在畫紙上踩了一個梅花印",
	},
	CategoryCleaning: {
		"小灰躲進了剛收好的紙箱",
		"房間變乾淨了，空氣也變好了",
	},
	CategoryWorking: {
		"工作辛苦了，累了就伸伸懶腰吧",
		"小灰躺在鍵盤旁邊陪你加油",
	},
	CategoryShopping: {
		"可以順便買罐罐嗎",
		"不要買菸喔",
	},
	CategoryCooking: {
		"好香！小灰在廚房門口探頭",
		"小灰幫你看著鍋子",
	},
	CategoryStudying: {
		"讀書加油！小灰幫你壓著筆記",
		"小灰陪你一起念書",
	},
	CategoryMeditating: {
		"吸氣～吐氣～小灰也閉上眼睛",
		"深呼吸的空氣最好喝了",
	},
	CategoryBrowsing: {
		"滑久了眼睛要休息一下",
		"小灰用爪子把你的手機推開",
	},
	CategoryTraveling: {
		"出門玩得開心，記得帶伴手禮",
		"小灰在家乖乖等你回來",
	},
	CategoryDefault: {
		"小灰歪著頭看你",
		"小灰聽不太懂，但還是很開心",
		"小灰眨了眨眼睛",
	},
}

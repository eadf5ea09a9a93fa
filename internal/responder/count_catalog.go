package responder

// countCatalog holds the pre-baked narrative for counts 1 through 20; entry
// i answers a count of i+1. Entries are sent verbatim.
var countCatalog = [20]string{
	// 1
	"今天的第 1 根。\n小灰從窗台上抬起頭，\n用尾巴輕輕掃了一下你的手。\n「一根就好，好不好？」",
	// 2
	"今天第 2 根了。\n小灰把耳朵壓得低低的，\n假裝沒看到，\n但偷偷數著呢。",
	// 3
	"第 3 根。\n小灰跳上桌子坐在打火機旁邊，\n一動也不動，\n像在站崗。",
	// 4
	"第 4 根囉。\n小灰打了個小小的噴嚏，\n然後很無辜地看著你。",
	// 5
	"今天第 5 根。\n小灰默默把窗戶推開一條縫，\n讓風吹進來，\n再跑回你腳邊蹭蹭。",
	// 6
	"第 6 根了。\n小灰開始在房間裡繞圈圈，\n每繞一圈就回頭看你一次。",
	// 7
	"第 7 根。\n小灰把自己的逗貓棒叼過來放在你面前，\n「要不要改成陪我玩？」",
	// 8
	"今天第 8 根。\n小灰縮成一顆毛球，\n把鼻子埋進尾巴裡，\n好像在躲煙味。",
	// 9
	"第 9 根囉。\n小灰坐得端端正正，\n用很認真的眼神盯著你，\n一句話也不說。",
	// 10
	"第 10 根了。\n雙位數了耶……\n小灰嘆了一口貓式長氣，\n「呼～」",
	// 11
	"第 11 根。\n小灰把菸灰缸推到桌子邊緣，\n爪子停在半空中，\n正在考慮要不要推下去。",
	// 12
	"今天第 12 根。\n小灰跑去翻出你去年體檢的單子，\n坐在上面不肯下來。",
	// 13
	"第 13 根。\n小灰的鬍鬚垂下來了，\n它把下巴靠在你手臂上，\n輕輕地喵了一聲。",
	// 14
	"第 14 根了。\n小灰在門口來回踱步，\n好像在等你帶它出去透透氣。",
	// 15
	"第 15 根。\n小灰把你的外套拖到玄關，\n「出去走走就不會想抽了吧？」",
	// 16
	"今天第 16 根。\n小灰躲到床底下，\n只露出一對發亮的眼睛，\n看起來有點擔心。",
	// 17
	"第 17 根。\n小灰把最喜歡的罐罐推給你，\n「我的分你吃，菸可以少一點嗎？」",
	// 18
	"第 18 根了。\n小灰安靜地趴在你胸口，\n聽著你的心跳，\n一下一下地數。",
	// 19
	"第 19 根。\n小灰用頭頂了頂你的手，\n力氣比平常大一點點，\n像是在說「夠了啦」。",
	// 20
	"今天第 20 根，整整一包了。\n小灰把空菸盒叼走藏了起來，\n然後坐在你旁邊，\n陪你一起看著窗外。",
}

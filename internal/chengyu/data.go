package chengyu

// meanings is the built-in idiom table. Chains link an idiom's last character
// to another idiom's first character.
var meanings = map[string]string{
	"一帆风顺": "比喻非常顺利，没有任何阻碍。",
	"顺水推舟": "顺着水流的方向推船，比喻顺着某个趋势说话办事。",
	"舟车劳顿": "形容旅途疲劳困顿。",
	"天天向上": "形容不断进步，每天都有提高。",
	"上行下效": "上面的人怎么做，下面的人就跟着学。",
	"效犬马力": "愿像犬马那样为人效劳，表示心甘情愿受人驱使。",
	"力争上游": "努力奋斗，争取先进。",
	"游刃有余": "比喻技术熟练，经验丰富，解决问题毫不费力。",
	"余音绕梁": "形容歌声优美，给人留下难忘的印象。",
	"梁上君子": "窃贼的代称。",
	"子虚乌有": "指假设的、不存在的、不真实的事情。",
	"有目共睹": "人人都可以看到，极其明显。",
	"睹物思人": "看见死去或离别的人留下的东西就想起了这个人。",
	"人山人海": "形容聚集的人极多。",
	"海阔天空": "形容大自然的广阔，也比喻想象或说话毫无拘束。",
	"空穴来风": "有了洞穴才有风进来，比喻消息和传说不是完全没有根据的。",
	"风调雨顺": "风雨及时适宜，形容年成好。",
	"马到成功": "形容事情顺利，一开始就取得成功。",
	"功成名就": "功绩取得了，名声也有了。",
	"就地取材": "在本地找需要的材料，比喻不依靠外力。",
	"材大难用": "能力强的人难以得到施展，指人才使用不当。",
	"用兵如神": "调兵遣将如同神人，形容善于指挥作战。",
	"神采飞扬": "形容兴奋得意，精神焕发的样子。",
	"扬长避短": "发挥或发扬优点或有利条件，克服或回避缺点或不利条件。",
	"短兵相接": "比喻面对面地进行激烈的斗争。",
	"接二连三": "一个接着一个，接连不断。",
	"三心二意": "又想这样又想那样，犹豫不定。",
	"意气风发": "形容精神振奋，气概豪迈。",
	"发愤图强": "下定决心，努力追求进步。",
	"强人所难": "勉强人家去做他不能做或不愿做的事情。",
}

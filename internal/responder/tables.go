package responder

// mediaTable maps exact message text to the static image answering it.
// Exact string equality only; no partial or fuzzy matching.
var mediaTable = map[string]string{
	"排位预测":    "static/paiweiyuce.jpg",
	"排位对战":    "static/paiweiyuce.jpg",
	"进阶图":     "static/jinjietu.jpg",
	"玩具扳手":    "static/wanjubanshou.jpg",
	"玩具精铁":    "static/wanjujingtie.jpg",
	"消耗档位":    "static/xiaohaodangwei.jpg",
	"vip对照表":  "static/vipduizhaobiao.jpg",
	"蓝色水晶":    "static/lanseshuijing.jpg",
	"紫色水晶":    "static/ziseshuijing.jpg",
	"橙色水晶":    "static/chengseshuijing.jpg",
	"红色水晶":    "static/hongseshuijing.jpg",
	"金色水晶":    "static/jinseshuijing.jpg",
	"水晶升级表":   "static/shuijingshengjibiao.jpg",
	"水晶升级金砖":  "static/shuijingshengjijinzhuan.jpg",
	"boss血量":  "static/bossxueliang.jpg",
	"boss击杀":  "static/bossjisha.jpg",
	"咸王顺序":    "static/xianwangshunxu.jpg",
	"洗练属性上限":  "static/xilianshuxingshangxian.jpg",
	"洗练计算公式":  "static/xilianjisuangongshi.jpg",
	"俱乐部人数":   "static/juleburenshu.jpg",
	"科技统计":    "static/kejitongji.jpg",
	"武将金币":    "static/wujiangjinbi.jpg",
	"武将进阶石":   "static/wujiangjinjieshi.jpg",
	"武将升星":    "static/wujiangshengxing.jpg",
	"武将满级速度":  "static/wujiangmanjisudu.jpg",
	"主公金币":    "static/zhugongjinbi.jpg",
	"主公进阶石":   "static/zhugongjinjieshi.jpg",
	"灯神奖励":    "static/dengshenjiangli.jpg",
	"灯神礼包":    "static/dengshenlibao.jpg",
	"零氪资源":    "static/lingkeziyuan.jpg",
	"终身通行证资源": "static/zhongshentongxingzhengziyuan.jpg",
	"氪满资源":    "static/kemanziyuan.jpg",
	"梦境商店":    "static/mengjingshangdian.jpg",
	"十殿1":     "static/shidian1.jpg",
	"十殿一":     "static/shidian1.jpg",
	"十殿2":     "static/shidian2.jpg",
	"十殿二":     "static/shidian2.jpg",
	"十殿3":     "static/shidian3.jpg",
	"十殿三":     "static/shidian3.jpg",
	"十殿4":     "static/shidian4.jpg",
	"十殿四":     "static/shidian4.jpg",
	"十殿5":     "static/shidian5.jpg",
	"十殿五":     "static/shidian5.jpg",
	"十殿6":     "static/shidian6.jpg",
	"十殿六":     "static/shidian6.jpg",
	"十殿7":     "static/shidian7.jpg",
	"十殿七":     "static/shidian7.jpg",
	"十殿8":     "static/shidian8.jpg",
	"十殿八":     "static/shidian8.jpg",
	"鱼珠技能":    "static/yuzhujineng.jpg",
	"鱼珠属性":    "static/yuzhushuxing.jpg",
	"鱼珠技能搭配":  "static/yuzhujinengdapei.jpg",
	"帮助":      "static/bangzhu.jpg",
	"菜单":      "static/bangzhu.jpg",
}

const (
	triggerCodes  = "兑换码"
	triggerExpiry = "到期时间"
	triggerPrice  = "价格"
)

const codesReply = "VIP666\n" +
	"vip666\n" +
	"XY888\n" +
	"taptap666\n" +
	"QQXY888\n" +
	"happy666\n" +
	"HAPPY666\n" +
	"xyzwgame666\n" +
	"huhushengwei888\n" +
	"app666\n" +
	"APP666\n" +
	"douyin666\n" +
	"douyin888\n" +
	"douyin777"

const priceReply = "请给小乖留言详谈"

package sanitizer

import "strings"

var rawStopWords = map[string]string{
	"en": `a about above after again against all am an and any are as at be because been before
being below between both but by can could did do does doing down during each few for from further
had has have having he her here hers herself him himself his how i if in into is it its itself
just me more most my myself no nor not now of off on once only or other our ours ourselves out over
own same she should so some such than that the their theirs them themselves then there these they
this those through to too under until up very was we were what when where which while who whom why
will with would you your yours yourself yourselves`,
	"ru": `и в во не что он на я с со как а то все она так его но да ты к у же вы за бы по только ее
мне было вот от меня еще нет о из ему теперь когда даже ну вдруг ли если уже или ни быть был него
до вас нибудь опять уж вам ведь там потом себя ничего ей может они тут где есть надо ней для мы тебя
их чем была сам чтоб без будто чего раз тоже себе под будет ж тогда кто этот того потому этого какой
совсем ним здесь этом один почти мой тем чтобы нее сейчас были куда зачем всех никогда можно при
наконец два об другой хоть после над больше тот через эти нас про всего них какая много разве три
эту моя впрочем хорошо свою этой перед иногда лучше чуть том нельзя такой им более всегда конечно
всю между это`,
	"de": `aber alle allem allen aller alles als also am an ander andere anderem anderen anderer anderes
auch auf aus bei bin bis bist da damit dann der den des dem die das dass du dein deine doch dort durch
ein eine einem einen einer eines er es euer eure für hatte hatten hattest hier hin hinter ich ihr ihre
im in ist jede jedem jeden jeder jedes jener jetzt kann kein keine können man manche mein meine mit
muss nach nicht nichts noch nun nur ob oder ohne sehr sein seine sich sie sind so solche soll sondern
sonst über um und uns unser unter viel vom von vor war waren warst was weg weil weiter welche wenn
werde werden wie wieder will wir wird wirst wo wollen zu zum zur zwar zwischen`,
	"fr": `au aux avec ce ces dans de des du elle en et eux il ils je la le les leur lui ma mais me même
mes moi mon ne nos notre nous on ou par pas pour qu que qui sa se ses son sur ta te tes toi ton tu un
une vos votre vous c d j l à m n s t y été étée étées étés étant suis es est sommes êtes sont serai
sera serons seront étais était étions étiez étaient fus fut ai as avons avez ont aurai aura avais
avait eu ceci cela celà cet cette ici ils les leurs quel quels quelle quelles sans soi`,
	"es": `de la que el en y a los del se las por un para con no una su al lo como más pero sus le ya o
este sí porque esta entre cuando muy sin sobre también me hasta hay donde quien desde todo nos
durante todos uno les ni contra otros ese eso ante ellos e esto mí antes algunos qué unos yo otro
otras otra él tanto esa estos mucho quienes nada muchos cual poco ella estar estas algunas algo
nosotros mi mis tú te ti tu tus ellas nosotras vosotros vosotras os mío mía míos mías tuyo tuya
es son fue era ser está están`,
	"it": `ad al allo ai agli all agl alla alle con col coi da dal dallo dai dagli dall dagl dalla dalle
di del dello dei degli dell degl della delle in nel nello nei negli nell negl nella nelle su sul sullo
sui sugli sull sugl sulla sulle per tra contro io tu lui lei noi voi loro mio mia miei mie tuo tua
tuoi tue suo sua suoi sue nostro nostra nostri nostre vostro vostra vostri vostre mi ti ci vi lo la
li le gli ne il un uno una ma ed se perché anche come dov dove che chi cui non più quale quanto quanti
quanta quante quello quelli quella quelle questo questi questa queste si tutto tutti a c e i l o ho
hai ha abbiamo avete hanno è sono era`,
	"pt": `de a o que e do da em um para é com não uma os no se na por mais as dos como mas foi ao ele
das tem à seu sua ou ser quando muito há nos já está eu também só pelo pela até isso ela entre era
depois sem mesmo aos ter seus quem nas me esse eles estão você tinha foram essa num nem suas meu às
minha têm numa pelos elas havia seja qual será nós tenho lhe deles essas esses pelas este fosse dele
tu te vocês vos lhes meus minhas teu tua teus tuas nosso nossa nossos nossas`,
}

// stopWords language code -> lower-cased stop-word set
var stopWords = buildStopWords(rawStopWords)

func buildStopWords(raw map[string]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(raw))
	for lang, words := range raw {
		set := make(map[string]bool)
		for _, w := range strings.Fields(words) {
			set[w] = true
		}
		out[lang] = set
	}
	return out
}

// HasStopWords reports whether a stop-word list exists for lang.
func HasStopWords(lang string) bool {
	_, ok := stopWords[strings.ToLower(lang)]
	return ok
}
